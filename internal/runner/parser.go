package runner

import (
	"regexp"
	"strconv"
	"strings"

	"specprobe/internal/results"
)

var (
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

	// "tests/test_agents.py::test_create PASSED [0.12s] [ 50%]"
	resultPattern = regexp.MustCompile(`(\S+\.py)::([^\s\[]+(?:\[[^\]\s]*\])?)\s+(PASSED|FAILED|SKIPPED|ERROR)(?:\s+\[\s*([\d.]+\s*m?s)\s*\])?(?:\s+\[\s*\d+%\])?`)

	// "FAILED tests/test_agents.py::test_create - assert 500 == 201" from -ra
	shortSummaryPattern = regexp.MustCompile(`^(FAILED|ERROR)\s+(\S+\.py)::(\S+)(?:\s+-\s+(.*))?$`)

	// "____________ test_create ____________" opening a traceback section
	sectionPattern = regexp.MustCompile(`^_{3,}\s+(?:ERROR (?:at \w+ of|collecting)\s+)?(\S+)\s+_{3,}$`)
)

// ParseOutput scrapes pytest's verbose text output. It is a textual
// boundary: the format belongs to pytest and may drift between versions.
//
// Result lines yield one TestResult each. Failure bodies are the non-blank
// lines that do not start with "=" and follow either a FAILED/ERROR result
// line or a traceback section header naming a failed test, up to the next
// recognized line.
func ParseOutput(output string) []results.TestResult {
	lines := strings.Split(ansiPattern.ReplaceAllString(output, ""), "\n")

	var parsed []results.TestResult
	for _, line := range lines {
		m := resultPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		r := results.TestResult{
			TestFile:   m[1],
			TestName:   m[2],
			Status:     results.Status(m[3]),
			DurationMs: parseDuration(m[4]),
			Assertions: []string{},
			Tags:       []string{},
		}
		if t := inferTestType(r.TestName); t != "" {
			r.TestType = results.StringPtr(t)
			r.Tags = append(r.Tags, t)
		}
		parsed = append(parsed, r)
	}

	attachErrorBodies(lines, parsed)
	return parsed
}

func attachErrorBodies(lines []string, parsed []results.TestResult) {
	bodies := make(map[int][]string)
	summaries := make(map[int]string)
	current := -1
	next := 0

	failedIndex := func(file, name string) int {
		for i, r := range parsed {
			if !isFailure(r.Status) {
				continue
			}
			if r.TestName == name && (file == "" || r.TestFile == file) {
				return i
			}
			// class-based tests are headed "TestAgents.test_create"
			if file == "" && strings.HasSuffix(name, "."+r.TestName) {
				return i
			}
		}
		return -1
	}

	for _, line := range lines {
		if resultPattern.MatchString(line) {
			current = -1
			if next < len(parsed) && isFailure(parsed[next].Status) {
				current = next
			}
			next++
			continue
		}
		trimmed := strings.TrimSpace(line)
		if m := shortSummaryPattern.FindStringSubmatch(trimmed); m != nil {
			if i := failedIndex(m[2], m[3]); i >= 0 && m[4] != "" {
				summaries[i] = strings.TrimSpace(m[4])
			}
			current = -1
			continue
		}
		if m := sectionPattern.FindStringSubmatch(trimmed); m != nil {
			current = failedIndex("", m[1])
			continue
		}
		if current >= 0 && trimmed != "" && !strings.HasPrefix(line, "=") {
			bodies[current] = append(bodies[current], line)
		}
	}

	for i := range parsed {
		var msg string
		if body, ok := bodies[i]; ok {
			msg = strings.TrimSpace(strings.Join(body, "\n"))
		}
		if msg == "" {
			msg = summaries[i]
		}
		if msg != "" {
			parsed[i].ErrorMessage = results.StringPtr(msg)
		}
	}
}

func isFailure(s results.Status) bool {
	return s == results.StatusFailed || s == results.StatusError
}

// parseDuration converts "0.12s" or "120ms" to milliseconds; anything else
// is 0.
func parseDuration(token string) float64 {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0
	}
	scale := 1000.0
	switch {
	case strings.HasSuffix(token, "ms"):
		token = strings.TrimSuffix(token, "ms")
		scale = 1
	case strings.HasSuffix(token, "s"):
		token = strings.TrimSuffix(token, "s")
	default:
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
	if err != nil {
		return 0
	}
	return v * scale
}

// scenario slugs appended to generated test names, longest first so that
// "missing_auth_token" wins over "missing_auth"
var testTypeSuffixes = []struct {
	suffix   string
	testType string
}{
	{"insufficient_permissions", "security"},
	{"with_empty_collection", "edge_case"},
	{"missing_auth_token", "security"},
	{"invalid_auth_token", "security"},
	{"expired_auth_token", "security"},
	{"with_large_dataset", "edge_case"},
	{"with_null_values", "edge_case"},
	{"crud_round_trip", "integration"},
	{"invalid_input", "error_scenario"},
	{"missing_auth", "error_scenario"},
	{"server_error", "error_scenario"},
	{"happy_path", "happy_path"},
	{"within_sla", "performance"},
	{"not_found", "error_scenario"},
	{"conflict", "error_scenario"},
}

// inferTestType maps a generated test name back to its scenario type. The
// "insufficient_permissions" slug is shared by error and security cases and
// is reported as security.
func inferTestType(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	for _, s := range testTypeSuffixes {
		if strings.HasSuffix(name, "_"+s.suffix) {
			return s.testType
		}
	}
	return ""
}
