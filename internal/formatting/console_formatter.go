package formatting

import (
	"fmt"
	"sort"
	"strings"

	"specprobe/internal/openapi"
	"specprobe/internal/results"
	"specprobe/internal/scenario"
)

// ConsoleFormatter prints plain numbered lines, suitable for pipes and grep.
type ConsoleFormatter struct {
	options Options
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(options Options) Formatter {
	return &ConsoleFormatter{options: options}
}

func (f *ConsoleFormatter) FormatEndpoints(endpoints []openapi.Endpoint) string {
	if len(endpoints) == 0 {
		return "No endpoints found."
	}
	lines := []string{fmt.Sprintf("Endpoints (%d):", len(endpoints))}
	for i, ep := range endpoints {
		line := fmt.Sprintf("  %d. %-7s %s", i+1, ep.Method, ep.Path)
		if ep.Summary != "" {
			line += " - " + ep.Summary
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (f *ConsoleFormatter) FormatTestCases(cases []scenario.TestCase) string {
	if len(cases) == 0 {
		return "No test cases generated."
	}
	lines := []string{fmt.Sprintf("Test cases (%d):", len(cases))}
	for _, tc := range cases {
		lines = append(lines, fmt.Sprintf("  %s [%s] %s %s -> %d  %s",
			tc.ID, tc.ScenarioType, tc.Method, tc.Endpoint, tc.ExpectedStatus, tc.Name))
	}
	return strings.Join(lines, "\n")
}

func (f *ConsoleFormatter) FormatSummary(s *results.Summary) string {
	line := fmt.Sprintf("%s: %d passed, %d failed, %d skipped, %d errors of %d (%.1f%%) in %.2fs",
		s.Banner(), s.PassedTests, s.FailedTests, s.SkippedTests, s.ErrorTests,
		s.TotalTests, s.SuccessRate(), s.ExecutionTimeSeconds())
	if f.options.Quiet {
		return line
	}
	lines := []string{line}
	for _, e := range s.Errors {
		lines = append(lines, "  ! "+e)
	}
	return strings.Join(lines, "\n")
}

// FormatData prints maps as sorted "key: value" lines.
func (f *ConsoleFormatter) FormatData(data interface{}) error {
	out := f.options.writer()
	switch d := data.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(out, "%s: %v\n", k, d[k]); err != nil {
				return err
			}
		}
		return nil
	case []interface{}:
		for _, item := range d {
			if _, err := fmt.Fprintf(out, "%v\n", item); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintf(out, "%v\n", d)
		return err
	}
}

func (f *ConsoleFormatter) SetOptions(options Options) {
	f.options = options
}

func (f *ConsoleFormatter) GetOptions() Options {
	return f.options
}
