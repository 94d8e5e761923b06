package scenario

import "fmt"

// ScenarioType is the category a test case belongs to.
type ScenarioType string

const (
	HappyPath     ScenarioType = "happy_path"
	EdgeCase      ScenarioType = "edge_case"
	ErrorScenario ScenarioType = "error_scenario"
	Security      ScenarioType = "security"
	Integration   ScenarioType = "integration"
	Performance   ScenarioType = "performance"
)

// AllScenarioTypes lists every category in emission order.
var AllScenarioTypes = []ScenarioType{HappyPath, EdgeCase, ErrorScenario, Security, Integration, Performance}

// ParseScenarioType accepts the snake_case names used in test tags.
func ParseScenarioType(name string) (ScenarioType, error) {
	for _, t := range AllScenarioTypes {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown scenario type %q", name)
}

// TestCase is one synthesized test definition. Values are never modified
// after synthesis.
type TestCase struct {
	ID               string         `json:"id" yaml:"id"`
	Name             string         `json:"name" yaml:"name"`
	Endpoint         string         `json:"endpoint" yaml:"endpoint"`
	Method           string         `json:"method" yaml:"method"`
	Description      string         `json:"description" yaml:"description"`
	ScenarioType     ScenarioType   `json:"scenario_type" yaml:"scenario_type"`
	Scenario         string         `json:"scenario" yaml:"scenario"`
	InputData        map[string]any `json:"input_data" yaml:"input_data"`
	ExpectedStatus   int            `json:"expected_status" yaml:"expected_status"`
	ExpectedResponse map[string]any `json:"expected_response" yaml:"expected_response"`
	Assertions       []string       `json:"assertions" yaml:"assertions"`
	Tags             []string       `json:"tags" yaml:"tags"`
	StoryID          string         `json:"story_id,omitempty" yaml:"story_id,omitempty"`
	StoryTitle       string         `json:"story_title,omitempty" yaml:"story_title,omitempty"`
}

// Counter hands out run-scoped test ids "test_1", "test_2", ...
type Counter struct {
	n int
}

// NewCounter returns a counter whose first id is "test_1".
func NewCounter() *Counter {
	return &Counter{}
}

// Next returns the next id.
func (c *Counter) Next() string {
	c.n++
	return fmt.Sprintf("test_%d", c.n)
}

// Issued returns how many ids have been handed out.
func (c *Counter) Issued() int {
	return c.n
}

// CategorySet selects which scenario types are synthesized. A nil set means
// DefaultCategories.
type CategorySet map[ScenarioType]bool

// DefaultCategories enables happy path, edge case, error and security
// scenarios.
func DefaultCategories() CategorySet {
	return Categories(HappyPath, EdgeCase, ErrorScenario, Security)
}

// Categories builds a set from the given types.
func Categories(types ...ScenarioType) CategorySet {
	set := CategorySet{}
	for _, t := range types {
		set[t] = true
	}
	return set
}

// Enabled reports whether t is selected.
func (s CategorySet) Enabled(t ScenarioType) bool {
	if s == nil {
		return DefaultCategories()[t]
	}
	return s[t]
}
