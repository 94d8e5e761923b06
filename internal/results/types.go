package results

import "time"

// Status is the outcome of one executed test.
type Status string

const (
	// StatusPassed indicates the test passed
	StatusPassed Status = "PASSED"
	// StatusFailed indicates an assertion failed
	StatusFailed Status = "FAILED"
	// StatusSkipped indicates the test was skipped
	StatusSkipped Status = "SKIPPED"
	// StatusError indicates the test could not run, e.g. a fixture error
	StatusError Status = "ERROR"
)

// Banner values chosen from the success rate.
const (
	BannerPass    = "PASS"
	BannerPartial = "PARTIAL"
	BannerFail    = "FAIL"
)

// TestResult is one executed test, as reported by the test engine.
type TestResult struct {
	// TestName is the test function name
	TestName string `json:"test_name"`
	// TestFile is the file the test lives in
	TestFile string `json:"test_file"`
	// Status is the reported outcome
	Status Status `json:"status"`
	// DurationMs is the reported duration in milliseconds, 0 when absent
	DurationMs float64 `json:"duration_ms"`
	// ErrorMessage carries the failure body for FAILED and ERROR results
	ErrorMessage *string `json:"error_message"`
	// Assertions lists the checks the test performed, when known
	Assertions []string `json:"assertions"`
	// Tags are free-form labels such as the scenario type
	Tags []string `json:"tags"`
	// TestType is the scenario type, when known
	TestType *string `json:"test_type"`
}

// Summary aggregates one execution run. The collector fills it in; after
// that it is only read.
type Summary struct {
	// RunID identifies the run in reports
	RunID string `json:"run_id"`
	// TotalTests is the number of results
	TotalTests int `json:"total_tests"`
	// PassedTests counts PASSED results
	PassedTests int `json:"passed_tests"`
	// FailedTests counts FAILED results
	FailedTests int `json:"failed_tests"`
	// SkippedTests counts SKIPPED results
	SkippedTests int `json:"skipped_tests"`
	// ErrorTests counts ERROR results
	ErrorTests int `json:"error_tests"`
	// TotalDurationMs sums the per-test durations
	TotalDurationMs float64 `json:"total_duration_ms"`
	// TestResults holds the individual results in report order
	TestResults []TestResult `json:"test_results"`
	// StartTime is when the engine was launched
	StartTime *time.Time `json:"start_time"`
	// EndTime is when the engine finished or was abandoned
	EndTime *time.Time `json:"end_time"`
	// Errors are pipeline failures such as a missing test directory or an
	// engine timeout, never individual test failures
	Errors []string `json:"errors"`
}
