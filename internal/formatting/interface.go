// Package formatting renders endpoints, test cases, run summaries and
// arbitrary command results in the output format picked with
// --output-format (console, JSON, YAML or table).
package formatting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"specprobe/internal/openapi"
	"specprobe/internal/results"
	"specprobe/internal/scenario"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatConsole OutputFormat = "console" // Plain line-oriented output
	FormatJSON    OutputFormat = "json"    // JSON output
	FormatYAML    OutputFormat = "yaml"    // YAML output
	FormatTable   OutputFormat = "table"   // Rich table output
)

// Formats lists the accepted --output-format values.
var Formats = []OutputFormat{FormatTable, FormatJSON, FormatYAML, FormatConsole}

// ParseFormat maps a flag value to an OutputFormat. The empty string selects
// the table format.
func ParseFormat(value string) (OutputFormat, error) {
	if value == "" {
		return FormatTable, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(value, string(f)) {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown output format %q (expected one of %s)", value, strings.Join(names, ", "))
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool      // Compact output, no decorations
	Color  bool      // Enable colored output
	Out    io.Writer // FormatData destination; os.Stdout when nil
}

func (o Options) writer() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// Formatter renders the domain objects of a generation or test run.
type Formatter interface {
	FormatEndpoints(endpoints []openapi.Endpoint) string
	FormatTestCases(cases []scenario.TestCase) string
	FormatSummary(summary *results.Summary) string

	// FormatData writes any other command result to Options.Out
	FormatData(data interface{}) error

	SetOptions(options Options)
	GetOptions() Options
}

// New returns the formatter for options.Format.
func New(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatConsole:
		return NewConsoleFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}

// endpointView is the serialisable shape of an endpoint listing.
type endpointView struct {
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	OperationID string   `json:"operationId,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Statuses    []int    `json:"statuses"`
	Deprecated  bool     `json:"deprecated,omitempty"`
}

func endpointViews(endpoints []openapi.Endpoint) []endpointView {
	views := make([]endpointView, 0, len(endpoints))
	for _, ep := range endpoints {
		views = append(views, endpointView{
			Method:      ep.Method,
			Path:        ep.Path,
			OperationID: ep.OperationID,
			Summary:     ep.Summary,
			Tags:        ep.Tags,
			Statuses:    ep.DocumentedStatuses(),
			Deprecated:  ep.Deprecated,
		})
	}
	return views
}

// summaryView adds the derived figures to a summary.
type summaryView struct {
	*results.Summary
	SuccessRate          float64 `json:"success_rate"`
	ExecutionTimeSeconds float64 `json:"execution_time_seconds"`
	Banner               string  `json:"banner"`
}

func newSummaryView(s *results.Summary) summaryView {
	return summaryView{
		Summary:              s,
		SuccessRate:          s.SuccessRate(),
		ExecutionTimeSeconds: s.ExecutionTimeSeconds(),
		Banner:               s.Banner(),
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
