package scenario

import "strings"

// CountByType tallies cases per scenario type.
func CountByType(cases []TestCase) map[ScenarioType]int {
	counts := make(map[ScenarioType]int)
	for _, c := range cases {
		counts[c.ScenarioType]++
	}
	return counts
}

// FilterByType returns the cases of one scenario type, in order.
func FilterByType(cases []TestCase, t ScenarioType) []TestCase {
	var out []TestCase
	for _, c := range cases {
		if c.ScenarioType == t {
			out = append(out, c)
		}
	}
	return out
}

// FilterByEndpoint returns the cases for one path and method (method
// compared case-insensitively).
func FilterByEndpoint(cases []TestCase, path, method string) []TestCase {
	var out []TestCase
	for _, c := range cases {
		if c.Endpoint == path && strings.EqualFold(c.Method, method) {
			out = append(out, c)
		}
	}
	return out
}
