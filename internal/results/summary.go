package results

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewSummary returns an empty summary with a fresh run id.
func NewSummary() *Summary {
	return &Summary{
		RunID:       uuid.NewString(),
		TestResults: []TestResult{},
		Errors:      []string{},
	}
}

// Add appends a result and updates the counters.
func (s *Summary) Add(r TestResult) {
	s.TestResults = append(s.TestResults, r)
	s.count(r)
}

// AddError records a pipeline-level failure.
func (s *Summary) AddError(format string, args ...interface{}) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// Start stamps the start time.
func (s *Summary) Start(at time.Time) {
	s.StartTime = &at
}

// Finish stamps the end time.
func (s *Summary) Finish(at time.Time) {
	s.EndTime = &at
}

// Recount recomputes every counter from TestResults.
func (s *Summary) Recount() {
	s.TotalTests, s.PassedTests, s.FailedTests, s.SkippedTests, s.ErrorTests = 0, 0, 0, 0, 0
	s.TotalDurationMs = 0
	for _, r := range s.TestResults {
		s.count(r)
	}
}

func (s *Summary) count(r TestResult) {
	s.TotalTests++
	s.TotalDurationMs += r.DurationMs
	switch r.Status {
	case StatusPassed:
		s.PassedTests++
	case StatusFailed:
		s.FailedTests++
	case StatusSkipped:
		s.SkippedTests++
	case StatusError:
		s.ErrorTests++
	}
}

// SuccessRate is passed/total as a percentage, 0 for an empty run.
func (s *Summary) SuccessRate() float64 {
	if s.TotalTests == 0 {
		return 0.0
	}
	return float64(s.PassedTests) / float64(s.TotalTests) * 100
}

// ExecutionTimeSeconds converts TotalDurationMs to seconds.
func (s *Summary) ExecutionTimeSeconds() float64 {
	return s.TotalDurationMs / 1000
}

// AverageDurationMs is the mean duration per test, 0 for an empty run.
func (s *Summary) AverageDurationMs() float64 {
	if s.TotalTests == 0 {
		return 0
	}
	return s.TotalDurationMs / float64(s.TotalTests)
}

// Banner thresholds the success rate: >=80 PASS, >=50 PARTIAL, else FAIL.
func (s *Summary) Banner() string {
	return BannerFor(s.SuccessRate())
}

// BannerFor applies the banner thresholds to a rate.
func BannerFor(rate float64) string {
	switch {
	case rate >= 80:
		return BannerPass
	case rate >= 50:
		return BannerPartial
	default:
		return BannerFail
	}
}

// Successful reports whether the run had no failures, errors or pipeline
// errors.
func (s *Summary) Successful() bool {
	return s.FailedTests == 0 && s.ErrorTests == 0 && len(s.Errors) == 0
}

// ByFile groups results by TestFile, keeping the original order within each
// group.
func (s *Summary) ByFile() map[string][]TestResult {
	groups := make(map[string][]TestResult)
	for _, r := range s.TestResults {
		groups[r.TestFile] = append(groups[r.TestFile], r)
	}
	return groups
}

// StringPtr is a helper for the optional string fields.
func StringPtr(s string) *string {
	return &s
}
