package formatting

import (
	"fmt"

	"specprobe/internal/openapi"
	"specprobe/internal/results"
	"specprobe/internal/scenario"

	"sigs.k8s.io/yaml"
)

// YAMLFormatter provides YAML output formatting. Values go through their
// JSON encoding first, so json tags and ordered maps are honoured.
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{options: options}
}

// FormatEndpoints formats the endpoint list as YAML
func (f *YAMLFormatter) FormatEndpoints(endpoints []openapi.Endpoint) string {
	return f.marshal(map[string]interface{}{
		"endpoints": endpointViews(endpoints),
		"count":     len(endpoints),
	})
}

// FormatTestCases formats test cases as YAML
func (f *YAMLFormatter) FormatTestCases(cases []scenario.TestCase) string {
	if cases == nil {
		cases = []scenario.TestCase{}
	}
	return f.marshal(map[string]interface{}{
		"test_cases": cases,
		"count":      len(cases),
	})
}

// FormatSummary formats a run summary as YAML
func (f *YAMLFormatter) FormatSummary(summary *results.Summary) string {
	return f.marshal(newSummaryView(summary))
}

// FormatData formats generic data as YAML
func (f *YAMLFormatter) FormatData(data interface{}) error {
	_, err := fmt.Fprint(f.options.writer(), f.marshal(data))
	return err
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}

func (f *YAMLFormatter) marshal(data interface{}) string {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("error: %q\n", "Failed to format YAML: "+err.Error())
	}
	return string(out)
}
