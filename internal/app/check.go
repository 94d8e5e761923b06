package app

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"specprobe/pkg/logging"
)

// CheckStatus is the outcome of one prerequisite check.
type CheckStatus string

const (
	CheckOK   CheckStatus = "ok"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// CheckItem is one line of the prerequisite report.
type CheckItem struct {
	Name   string      `json:"name"`
	Status CheckStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
	Hint   string      `json:"hint,omitempty"`
}

// CheckResult is the prerequisite report. Passed is false when a hard
// prerequisite failed; warnings do not count.
type CheckResult struct {
	Items  []CheckItem `json:"items"`
	Passed bool        `json:"passed"`
}

// Failed returns the names of the failed items.
func (r CheckResult) Failed() []string {
	var names []string
	for _, item := range r.Items {
		if item.Status == CheckFail {
			names = append(names, item.Name)
		}
	}
	return names
}

// Inputs are the documents the AI workflow feeds to the language model.
type Inputs struct {
	Constitution  string `json:"constitution,omitempty"`
	Specification string `json:"specification,omitempty"`
	Plan          string `json:"plan,omitempty"`
}

// SearchRoots are the directories searched for input documents, nearest
// first.
var SearchRoots = []string{".", "..", filepath.Join("..", ".."), filepath.Join("..", "..", "..")}

// FindInputs looks for .specify/memory/constitution.md and
// specs/<feature>/{spec,plan}.md below each root. The first match wins;
// within one root features are taken in name order.
func FindInputs(roots []string) Inputs {
	var in Inputs
	for _, root := range roots {
		if in.Constitution == "" {
			in.Constitution = firstExisting(filepath.Join(root, ".specify", "memory", "constitution.md"))
		}
		if in.Specification == "" {
			in.Specification = firstGlob(filepath.Join(root, "specs", "*", "spec.md"))
		}
		if in.Plan == "" {
			in.Plan = firstGlob(filepath.Join(root, "specs", "*", "plan.md"))
		}
	}
	return in
}

func firstExisting(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

func firstGlob(pattern string) string {
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	for _, m := range matches {
		if firstExisting(m) != "" {
			return m
		}
	}
	return ""
}

// Check verifies the AI workflow prerequisites. The language-model daemon
// and its model are hard requirements; the input documents and the test
// engine only produce warnings.
func (a *Application) Check(ctx context.Context) CheckResult {
	result := CheckResult{Passed: true}
	add := func(item CheckItem) {
		if item.Status == CheckFail {
			result.Passed = false
			logging.Warn("Check", "%s: %s", item.Name, item.Detail)
		}
		result.Items = append(result.Items, item)
	}

	client := a.services.LLM
	if client.CheckConnection(ctx) {
		add(CheckItem{Name: "Ollama connection", Status: CheckOK, Detail: client.BaseURL()})
	} else {
		add(CheckItem{Name: "Ollama connection", Status: CheckFail,
			Detail: "not reachable at " + client.BaseURL(), Hint: "start it with: ollama serve"})
	}

	if client.ModelAvailable(ctx) {
		add(CheckItem{Name: "Model " + client.Model(), Status: CheckOK})
	} else {
		add(CheckItem{Name: "Model " + client.Model(), Status: CheckFail,
			Detail: "not installed", Hint: "install it with: ollama pull " + client.Model()})
	}

	inputs := FindInputs(SearchRoots)
	for _, doc := range []struct{ name, path string }{
		{"Constitution file", inputs.Constitution},
		{"Specification file", inputs.Specification},
		{"Plan file", inputs.Plan},
	} {
		if doc.path != "" {
			add(CheckItem{Name: doc.name, Status: CheckOK, Detail: doc.path})
		} else {
			add(CheckItem{Name: doc.name, Status: CheckWarn, Detail: "not found"})
		}
	}

	if version, err := a.services.NewRunner(nil).EngineVersion(ctx); err == nil {
		add(CheckItem{Name: "Test engine", Status: CheckOK, Detail: version})
	} else {
		add(CheckItem{Name: "Test engine", Status: CheckWarn, Detail: err.Error(), Hint: "install it with: pip install pytest pytest-timeout requests"})
	}
	return result
}
