package emitter

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"specprobe/internal/openapi"
	"specprobe/internal/scenario"
	"specprobe/pkg/logging"

	"github.com/Masterminds/sprig/v3"
)

// SpecificationFile is the default name of the Markdown case listing.
const SpecificationFile = "test_specification.md"

var (
	//go:embed templates/test_module.py.tmpl
	testModuleTemplate string

	//go:embed templates/specification.md.tmpl
	specificationTemplate string

	moduleTmpl = template.Must(template.New("module").Funcs(sprig.TxtFuncMap()).Parse(testModuleTemplate))
	specTmpl   = template.Must(template.New("specification").Funcs(sprig.TxtFuncMap()).Parse(specificationTemplate))
)

// ModuleOptions holds the defaults baked into a generated module. Every
// value can be overridden at test time through the environment.
type ModuleOptions struct {
	// Title is the module docstring headline
	Title string
	// Source names the document the cases came from
	Source string
	// BaseURL is used when API_BASE_URL and API_URL are unset
	BaseURL string
	// TimeoutSeconds is the per-request timeout
	TimeoutSeconds float64
	// AuthHeader, AuthScheme and AuthToken build the Authorization header
	AuthHeader string
	AuthScheme string
	AuthToken  string
}

func (o ModuleOptions) withDefaults() ModuleOptions {
	if o.Title == "" {
		o.Title = "Generated API tests"
	}
	if o.Source == "" {
		o.Source = "an OpenAPI document"
	}
	if o.BaseURL == "" {
		o.BaseURL = "http://localhost:8080"
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = 30
	}
	if o.AuthHeader == "" {
		o.AuthHeader = "Authorization"
	}
	if o.AuthScheme == "" {
		o.AuthScheme = "Bearer"
	}
	return o
}

type moduleView struct {
	ModuleOptions
	Cases []caseView
}

type caseView struct {
	ID           string
	Name         string
	Description  string
	Method       string
	Path         string
	ScenarioType string
	Story        string
	Assertions   []string
	PathParams   string
	Query        string
	Body         string
	Headers      string
	Status       int
	CheckBody    bool
	SLAMs        int
}

// EmitTestModule renders a pytest module with one test function per case,
// in input order. Repeated function names get a numeric suffix so that a
// later test never shadows an earlier one.
func EmitTestModule(cases []scenario.TestCase, opts ModuleOptions) (string, error) {
	view := moduleView{ModuleOptions: opts.withDefaults()}
	view.Title = pyDocstring(pyComment(view.Title))
	view.Source = pyDocstring(view.Source)

	seen := make(map[string]int, len(cases))
	for _, tc := range cases {
		cv, err := newCaseView(tc)
		if err != nil {
			return "", fmt.Errorf("test case %s: %w", tc.ID, err)
		}
		seen[cv.Name]++
		if n := seen[cv.Name]; n > 1 {
			cv.Name = cv.Name + "_" + strconv.Itoa(n)
		}
		view.Cases = append(view.Cases, cv)
	}

	var b strings.Builder
	if err := moduleTmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("failed to render test module: %w", err)
	}
	logging.Debug("CodeGenerator", "Rendered %d test functions", len(view.Cases))
	return b.String(), nil
}

func newCaseView(tc scenario.TestCase) (caseView, error) {
	cv := caseView{
		ID:           tc.ID,
		Name:         tc.Name,
		Description:  pyDocstring(pyComment(tc.Description)),
		Method:       strings.ToUpper(tc.Method),
		Path:         tc.Endpoint,
		ScenarioType: string(tc.ScenarioType),
		Status:       tc.ExpectedStatus,
		Headers:      headersFor(tc.Scenario),
	}
	if tc.StoryID != "" {
		cv.Story = pyDocstring(strings.TrimSpace(tc.StoryID + " " + tc.StoryTitle))
	}
	for _, a := range tc.Assertions {
		cv.Assertions = append(cv.Assertions, pyComment(a))
		if a == "Response body is not empty" && tc.ExpectedStatus != 204 {
			cv.CheckBody = true
		}
	}

	var err error
	if v, ok := tc.InputData["path_params"]; ok && v != nil {
		if cv.PathParams, err = pyLiteral(v); err != nil {
			return cv, err
		}
	}
	if v, ok := tc.InputData["query"]; ok && v != nil {
		if cv.Query, err = pyLiteral(v); err != nil {
			return cv, err
		}
	}
	if v, ok := tc.InputData["body"]; ok && v != nil {
		if cv.Body, err = pyLiteral(v); err != nil {
			return cv, err
		}
	}
	if sla, ok := tc.InputData["sla_ms"].(int); ok && sla > 0 {
		cv.SLAMs = sla
	}
	return cv, nil
}

// headersFor picks the Authorization header a scenario sends. The token
// values match the ones the mock server recognises.
func headersFor(slug string) string {
	switch slug {
	case "missing_auth", "missing_auth_token":
		return "{}"
	case "invalid_auth_token":
		return `auth_headers("invalid-token")`
	case "expired_auth_token":
		return `auth_headers("expired-token")`
	case "insufficient_permissions":
		return `auth_headers("readonly-token")`
	default:
		return "auth_headers()"
	}
}

type specificationView struct {
	Title  string
	Total  int
	Groups []specificationGroup
}

type specificationGroup struct {
	Label string
	Cases []scenario.TestCase
}

// EmitSpecificationDocument renders a Markdown listing of the cases grouped
// by scenario type, in the fixed category order, with per-group counts.
func EmitSpecificationDocument(cases []scenario.TestCase, title string) (string, error) {
	if title == "" {
		title = "Test Specification"
	}
	view := specificationView{Title: title, Total: len(cases)}
	for _, t := range scenario.AllScenarioTypes {
		group := scenario.FilterByType(cases, t)
		if len(group) == 0 {
			continue
		}
		view.Groups = append(view.Groups, specificationGroup{Label: scenarioLabel(t), Cases: group})
	}

	var b strings.Builder
	if err := specTmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("failed to render test specification: %w", err)
	}
	return b.String(), nil
}

func scenarioLabel(t scenario.ScenarioType) string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// WriteFile writes content to path, creating parent directories. An
// existing file is truncated and rewritten.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Info("CodeGenerator", "Wrote %s", path)
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// ModuleFileName returns the file name generated for a resource, e.g.
// "test_agents_generated.py".
func ModuleFileName(resource string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(resource), "_"), "_")
	if name == "" {
		name = "root"
	}
	return "test_" + name + "_generated.py"
}

// ResourceGroup holds the cases that share a resource.
type ResourceGroup struct {
	Resource string
	Cases    []scenario.TestCase
}

// GroupByResource splits cases by the first static path segment of their
// endpoint, keeping first-seen order of resources and input order within
// each group.
func GroupByResource(cases []scenario.TestCase) []ResourceGroup {
	var groups []ResourceGroup
	index := make(map[string]int)
	for _, tc := range cases {
		resource := openapi.Endpoint{Path: tc.Endpoint}.Resource()
		i, ok := index[resource]
		if !ok {
			i = len(groups)
			index[resource] = i
			groups = append(groups, ResourceGroup{Resource: resource})
		}
		groups[i].Cases = append(groups[i].Cases, tc)
	}
	return groups
}
