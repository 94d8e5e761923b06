package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"specprobe/internal/emitter"
	"specprobe/internal/results"
	"specprobe/internal/runner"
	"specprobe/pkg/logging"
)

// ErrNoTestCode is returned when the language model produced nothing usable.
var ErrNoTestCode = errors.New("language model returned no test code")

// AIOptions selects the inputs of an LLM-authored test module.
type AIOptions struct {
	Resource string
	// ConstitutionPath and SpecPath default to FindInputs over SearchRoots
	ConstitutionPath string
	SpecPath         string
	// Generate uses the single-prompt endpoint instead of chat
	Generate bool
	// PromptFile holds a prompt template replacing the built-in one
	PromptFile string
}

// AIModuleFileName is the file an LLM-authored module for resource is saved
// as, next to the deterministic modules.
func AIModuleFileName(resource string) string {
	return strings.TrimSuffix(emitter.ModuleFileName(resource), "_generated.py") + "_ai.py"
}

// GenerateAI asks the language model for a pytest module covering one
// resource and saves it in the tests directory. Without a constitution the
// specification doubles as one.
func (a *Application) GenerateAI(ctx context.Context, opts AIOptions) (string, error) {
	if opts.Resource == "" {
		opts.Resource = "agents"
	}
	if opts.SpecPath == "" || opts.ConstitutionPath == "" {
		found := FindInputs(SearchRoots)
		if opts.SpecPath == "" {
			opts.SpecPath = found.Specification
		}
		if opts.ConstitutionPath == "" {
			opts.ConstitutionPath = found.Constitution
		}
	}
	if opts.SpecPath == "" {
		return "", &PrerequisiteError{Missing: []string{"specification file"}}
	}
	if opts.ConstitutionPath == "" {
		logging.Warn("Pipeline", "Constitution file not found, using %s for both inputs", opts.SpecPath)
		opts.ConstitutionPath = opts.SpecPath
	}

	gen := a.services.TestCodeGenerator
	if opts.PromptFile != "" {
		data, err := os.ReadFile(opts.PromptFile)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt template: %w", err)
		}
		if gen, err = gen.WithPromptTemplate(string(data)); err != nil {
			return "", fmt.Errorf("invalid prompt template %s: %w", opts.PromptFile, err)
		}
	}
	var code string
	if opts.Generate {
		code = gen.GenerateTestCases(ctx, opts.ConstitutionPath, opts.SpecPath, opts.Resource)
	} else {
		code = gen.GenerateTestCasesChat(ctx, opts.ConstitutionPath, opts.SpecPath, opts.Resource)
	}
	if strings.TrimSpace(code) == "" {
		return "", ErrNoTestCode
	}
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}

	path := filepath.Join(a.settings.TestsDir(), AIModuleFileName(opts.Resource))
	if err := emitter.WriteFile(path, code); err != nil {
		return "", err
	}
	logging.Info("Pipeline", "Generated %d lines of test code for %s", strings.Count(code, "\n"), opts.Resource)
	return path, nil
}

// FullOptions configures the complete workflow.
type FullOptions struct {
	AI AIOptions
	// OpenAPIPath enables the mock data step when set
	OpenAPIPath string
	Reporter    runner.Reporter
	ReportTitle string
}

// FullResult collects what each step of the workflow produced.
type FullResult struct {
	Check        CheckResult      `json:"check"`
	MockDataFile string           `json:"mock_data_file,omitempty"`
	AIModule     string           `json:"ai_module,omitempty"`
	Summary      *results.Summary `json:"summary,omitempty"`
	Reports      []string         `json:"reports,omitempty"`
}

// Full runs check, mock data, AI generation, the tests and the reports. It
// stops after the check when hard prerequisites are missing. Mock data and
// AI generation failures are logged and the workflow continues with
// whatever tests already exist.
func (a *Application) Full(ctx context.Context, opts FullOptions) (*FullResult, error) {
	res := &FullResult{Check: a.Check(ctx)}
	if !res.Check.Passed {
		return res, &PrerequisiteError{Missing: res.Check.Failed()}
	}

	if opts.OpenAPIPath != "" {
		path, _, err := a.MockData(opts.OpenAPIPath)
		if err != nil {
			logging.Error("Pipeline", err, "Mock data generation failed")
		}
		res.MockDataFile = path
	}

	module, err := a.GenerateAI(ctx, opts.AI)
	if err != nil {
		logging.Error("Pipeline", err, "AI test generation failed")
	}
	res.AIModule = module

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("workflow interrupted: %w", err)
	}

	res.Summary = a.RunTests(ctx, RunOptions{Reporter: opts.Reporter})
	written, errs := a.WriteReports(res.Summary, opts.ReportTitle)
	for _, e := range errs {
		logging.Warn("Pipeline", "Report generation error: %v", e)
	}
	res.Reports = written
	return res, nil
}
