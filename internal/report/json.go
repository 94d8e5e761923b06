package report

import (
	"encoding/json"
	"fmt"

	"specprobe/internal/results"
)

// document is the on-disk JSON shape: the summary plus its derived values.
type document struct {
	*results.Summary
	SuccessRate          float64 `json:"success_rate"`
	ExecutionTimeSeconds float64 `json:"execution_time_seconds"`
}

// RenderJSON returns the indented JSON report.
func RenderJSON(s *results.Summary) (string, error) {
	doc := document{
		Summary:              s,
		SuccessRate:          s.SuccessRate(),
		ExecutionTimeSeconds: s.ExecutionTimeSeconds(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(data) + "\n", nil
}

// ParseJSON reads a report produced by RenderJSON. The derived fields are
// ignored since they follow from the counters.
func ParseJSON(data []byte) (*results.Summary, error) {
	doc := document{Summary: &results.Summary{}}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	s := doc.Summary
	if s.TestResults == nil {
		s.TestResults = []results.TestResult{}
	}
	if s.Errors == nil {
		s.Errors = []string{}
	}
	return s, nil
}
