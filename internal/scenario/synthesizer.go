package scenario

import (
	"fmt"
	"strings"

	"specprobe/internal/mockdata"
	"specprobe/internal/openapi"
	"specprobe/internal/stories"
	"specprobe/pkg/logging"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultPerformanceSLAMs is the response-time budget used when Options
// leaves it unset.
const DefaultPerformanceSLAMs = 200

// Options tunes one synthesis run.
type Options struct {
	// Counter issues the test ids. A nil counter starts a fresh run at 1.
	Counter *Counter
	// Categories selects the scenario types; nil means DefaultCategories.
	Categories CategorySet
	// Samples provides example payloads; nil uses a generator over the spec.
	Samples *mockdata.Generator
	// PerformanceSLAMs is the budget asserted by performance cases.
	PerformanceSLAMs int
}

type edgeTemplate struct {
	slug        string
	description string
}

var edgeTemplates = []edgeTemplate{
	{"with_empty_collection", "Test with empty collection response"},
	{"with_null_values", "Test with null values in response"},
	{"with_large_dataset", "Test with large dataset"},
}

type errorTemplate struct {
	status      int
	slug        string
	description string
}

var errorTemplates = []errorTemplate{
	{400, "invalid_input", "Invalid input data"},
	{401, "missing_auth", "Missing authentication"},
	{403, "insufficient_permissions", "Insufficient permissions"},
	{404, "not_found", "Resource not found"},
	{409, "conflict", "Conflict/version mismatch"},
	{500, "server_error", "Server error"},
}

// alwaysIncluded error statuses are emitted even when the operation does not
// document them.
var alwaysIncluded = map[int]bool{400: true, 401: true, 403: true, 404: true}

type securityTemplate struct {
	slug        string
	description string
	status      int
}

var securityTemplates = []securityTemplate{
	{"missing_auth_token", "Test without authentication token", 401},
	{"invalid_auth_token", "Test with invalid authentication token", 401},
	{"expired_auth_token", "Test with expired authentication token", 401},
	{"insufficient_permissions", "Test with insufficient permissions", 403},
}

// Synthesize expands every endpoint of spec into test cases. model may be
// nil. The output depends only on the inputs, so identical inputs yield
// identical cases.
func Synthesize(spec *openapi.Spec, model *stories.Model, opts Options) []TestCase {
	s := &synthesizer{
		spec:     spec,
		counter:  opts.Counter,
		cats:     opts.Categories,
		samples:  opts.Samples,
		sla:      opts.PerformanceSLAMs,
		criteria: model.AllAcceptanceCriteria(),
	}
	if s.counter == nil {
		s.counter = NewCounter()
	}
	if s.samples == nil {
		s.samples = mockdata.NewGenerator(spec)
	}
	if s.sla <= 0 {
		s.sla = DefaultPerformanceSLAMs
	}

	var cases []TestCase
	for _, ep := range spec.Endpoints() {
		cases = append(cases, s.endpoint(ep)...)
	}
	logging.Info("TestGenerator", "Generated %d test cases for %d endpoints", len(cases), len(spec.Endpoints()))
	return cases
}

type synthesizer struct {
	spec     *openapi.Spec
	counter  *Counter
	cats     CategorySet
	samples  *mockdata.Generator
	sla      int
	criteria []stories.AnnotatedCriterion
}

func (s *synthesizer) endpoint(ep openapi.Endpoint) []TestCase {
	var out []TestCase
	if s.cats.Enabled(HappyPath) {
		out = append(out, s.happyPath(ep))
	}
	if s.cats.Enabled(EdgeCase) {
		out = append(out, s.edgeCases(ep)...)
	}
	if s.cats.Enabled(ErrorScenario) {
		out = append(out, s.errorCases(ep)...)
	}
	if s.cats.Enabled(Security) {
		out = append(out, s.securityCases(ep)...)
	}
	if s.cats.Enabled(Integration) {
		out = append(out, s.integrationCase(ep))
	}
	if s.cats.Enabled(Performance) {
		out = append(out, s.performanceCase(ep))
	}
	return out
}

func (s *synthesizer) newCase(ep openapi.Endpoint, t ScenarioType, slug, description string, status int) TestCase {
	tags := make([]string, 0, 1+len(ep.Tags))
	tags = append(tags, string(t))
	tags = append(tags, ep.Tags...)
	return TestCase{
		ID:               s.counter.Next(),
		Name:             FormatTestName(ep.Name(), slug),
		Endpoint:         ep.Path,
		Method:           ep.Method,
		Description:      description,
		ScenarioType:     t,
		Scenario:         slug,
		InputData:        map[string]any{},
		ExpectedStatus:   status,
		ExpectedResponse: map[string]any{},
		Tags:             tags,
	}
}

func (s *synthesizer) happyPath(ep openapi.Endpoint) TestCase {
	status := mockdata.SuccessStatus(ep)
	tc := s.newCase(ep, HappyPath, "happy_path", fmt.Sprintf("Happy path test for %s", ep.Key()), status)
	tc.InputData = s.validInput(ep)
	if body := s.samples.ResponseSample(ep, status); body != nil {
		tc.ExpectedResponse["body"] = body
	}
	tc.Assertions = []string{
		fmt.Sprintf("Status code is %d", status),
		"Response body is not empty",
		"Response contains expected fields",
	}

	if story, ok := s.linkedStory(ep); ok {
		tc.StoryID = story.StoryID
		tc.StoryTitle = story.StoryTitle
		tc.Tags = append(tc.Tags, "story:"+story.StoryID)
	}
	return tc
}

func (s *synthesizer) edgeCases(ep openapi.Endpoint) []TestCase {
	out := make([]TestCase, 0, len(edgeTemplates))
	for _, tmpl := range edgeTemplates {
		tc := s.newCase(ep, EdgeCase, tmpl.slug, tmpl.description, 200)
		tc.InputData = s.validInput(ep)
		switch tmpl.slug {
		case "with_null_values":
			if fields := s.nullFields(ep); fields != nil {
				tc.InputData["body"] = fields
			}
		case "with_large_dataset":
			tc.InputData["query"] = map[string]any{"limit": 1000}
		}
		tc.Assertions = []string{
			fmt.Sprintf("Status code is %d", tc.ExpectedStatus),
			"Response handles edge case correctly",
		}
		out = append(out, tc)
	}
	return out
}

func (s *synthesizer) errorCases(ep openapi.Endpoint) []TestCase {
	var out []TestCase
	for _, tmpl := range errorTemplates {
		if !ep.Documents(tmpl.status) && !alwaysIncluded[tmpl.status] {
			continue
		}
		tc := s.newCase(ep, ErrorScenario, tmpl.slug, tmpl.description, tmpl.status)
		tc.InputData = s.validInput(ep)
		switch tmpl.status {
		case 400:
			tc.InputData["body"] = map[string]any{"invalid_field": "invalid"}
		case 404:
			if params := s.missingPathParams(ep); len(params) > 0 {
				tc.InputData["path_params"] = params
			}
		}
		tc.Assertions = []string{
			fmt.Sprintf("Status code is %d", tmpl.status),
			"Error message is clear",
			"Error response follows standard format",
		}
		out = append(out, tc)
	}
	return out
}

func (s *synthesizer) securityCases(ep openapi.Endpoint) []TestCase {
	out := make([]TestCase, 0, len(securityTemplates))
	for _, tmpl := range securityTemplates {
		tc := s.newCase(ep, Security, tmpl.slug, tmpl.description, tmpl.status)
		tc.InputData = s.validInput(ep)
		tc.Assertions = []string{
			fmt.Sprintf("Status code is %d", tmpl.status),
			"Security validation is enforced",
		}
		out = append(out, tc)
	}
	return out
}

func (s *synthesizer) integrationCase(ep openapi.Endpoint) TestCase {
	status := mockdata.SuccessStatus(ep)
	tc := s.newCase(ep, Integration, "crud_round_trip", fmt.Sprintf("Round trip through %s and read back the resource", ep.Key()), status)
	tc.InputData = s.validInput(ep)
	tc.Assertions = []string{
		fmt.Sprintf("Status code is %d", status),
		"Created resource can be read back",
	}
	return tc
}

func (s *synthesizer) performanceCase(ep openapi.Endpoint) TestCase {
	status := mockdata.SuccessStatus(ep)
	tc := s.newCase(ep, Performance, "within_sla", fmt.Sprintf("Response time of %s stays within %dms", ep.Key(), s.sla), status)
	tc.InputData = s.validInput(ep)
	tc.InputData["sla_ms"] = s.sla
	tc.Assertions = []string{
		fmt.Sprintf("Status code is %d", status),
		fmt.Sprintf("Response time is under %dms", s.sla),
	}
	return tc
}

// validInput returns sample path parameters and request body.
func (s *synthesizer) validInput(ep openapi.Endpoint) map[string]any {
	input := map[string]any{}
	if params := s.pathParams(ep, ""); len(params) > 0 {
		input["path_params"] = params
	}
	if body := s.samples.RequestSample(ep); body != nil {
		input["body"] = body
	}
	return input
}

func (s *synthesizer) pathParams(ep openapi.Endpoint, prefix string) map[string]any {
	names := ep.PathParameters()
	if len(names) == 0 {
		return nil
	}
	params := make(map[string]any, len(names))
	for _, name := range names {
		var value any = "1"
		for _, p := range ep.Parameters {
			if p.In == "path" && p.Name == name {
				if v := s.samples.Sample(p.Schema); v != nil {
					value = v
				}
				break
			}
		}
		if prefix != "" {
			value = fmt.Sprintf("%s%v", prefix, value)
		}
		params[name] = value
	}
	return params
}

func (s *synthesizer) missingPathParams(ep openapi.Endpoint) map[string]any {
	return s.pathParams(ep, "missing-")
}

// nullFields returns the request body's top-level properties set to null,
// in document order.
func (s *synthesizer) nullFields(ep openapi.Endpoint) *orderedmap.OrderedMap[string, any] {
	if ep.RequestBody == nil {
		return nil
	}
	body := s.spec.Resolve(*ep.RequestBody)
	props := body.Properties()
	if len(props) == 0 {
		return nil
	}
	fields := orderedmap.New[string, any]()
	for _, p := range props {
		fields.Set(p.Name, nil)
	}
	return fields
}

// linkedStory finds the first criterion whose When clause mentions
// "METHOD path" for the endpoint.
func (s *synthesizer) linkedStory(ep openapi.Endpoint) (stories.AnnotatedCriterion, bool) {
	needle := strings.ToUpper(ep.Method + " " + ep.Path)
	for _, c := range s.criteria {
		when := strings.ToUpper(c.When)
		idx := strings.Index(when, needle)
		if idx < 0 {
			continue
		}
		// the path must match exactly, so "/agents" does not claim "/agents/{id}"
		rest := when[idx+len(needle):]
		if rest == "" || !isPathChar(rest[0]) {
			return c, true
		}
	}
	return stories.AnnotatedCriterion{}, false
}

func isPathChar(b byte) bool {
	return b == '/' || b == '{' || b == '_' || b == '-' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
