package scenario

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// FormatTestName builds a snake_case test function name from a base label
// and a scenario slug: FormatTestName("Create Agent", "happy_path") is
// "test_create_agent_happy_path".
func FormatTestName(base, slug string) string {
	name := strings.ToLower(base + "_" + slug)
	name = nonAlphanumeric.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if !strings.HasPrefix(name, "test_") {
		name = "test_" + name
	}
	return name
}
