package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the column width used for summaries and test
// names in tables.
const DefaultDescriptionMaxLen = 60

// Ellipsis marks text that was cut.
const Ellipsis = "..."

// Truncate shortens s to at most maxLen runes, replacing the tail with
// Ellipsis when it had to cut. When maxLen leaves no room for the marker the
// plain prefix is returned.
func Truncate(s string, maxLen int) string {
	if maxLen < 0 {
		maxLen = 0
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= len(Ellipsis) {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-len(Ellipsis)]) + Ellipsis
}

// TruncateDescription collapses s onto a single line and truncates it to
// maxLen runes.
func TruncateDescription(s string, maxLen int) string {
	return Truncate(SingleLine(s), maxLen)
}

// SingleLine replaces every run of whitespace, newlines included, with one
// space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Prefix returns the first n runes of s without any marker.
func Prefix(s string, n int) string {
	runes := []rune(s)
	if n < 0 {
		n = 0
	}
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Preview is the one-line form of s cut to n runes, always followed by
// Ellipsis so readers know to look at the full text.
func Preview(s string, n int) string {
	return Prefix(SingleLine(s), n) + Ellipsis
}
