package formatting

import (
	"encoding/json"
	"fmt"

	"specprobe/internal/openapi"
	"specprobe/internal/results"
	"specprobe/internal/scenario"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{options: options}
}

// FormatEndpoints renders {"endpoints": [...], "count": n}.
func (f *JSONFormatter) FormatEndpoints(endpoints []openapi.Endpoint) string {
	return f.marshal(map[string]interface{}{
		"endpoints": endpointViews(endpoints),
		"count":     len(endpoints),
	})
}

// FormatTestCases renders {"test_cases": [...], "count": n}.
func (f *JSONFormatter) FormatTestCases(cases []scenario.TestCase) string {
	if cases == nil {
		cases = []scenario.TestCase{}
	}
	return f.marshal(map[string]interface{}{
		"test_cases": cases,
		"count":      len(cases),
	})
}

// FormatSummary renders the summary with its derived figures.
func (f *JSONFormatter) FormatSummary(summary *results.Summary) string {
	return f.marshal(newSummaryView(summary))
}

// FormatData formats generic data as JSON
func (f *JSONFormatter) FormatData(data interface{}) error {
	_, err := fmt.Fprintln(f.options.writer(), f.marshal(data))
	return err
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}

// marshal is compact in quiet mode and indented otherwise.
func (f *JSONFormatter) marshal(data interface{}) string {
	if !f.options.Quiet {
		return PrettyJSON(data)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, "Failed to format JSON: "+err.Error())
	}
	return string(b)
}
