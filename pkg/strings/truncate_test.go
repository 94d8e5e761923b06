package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string unchanged", "short", 10, "short"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "abcdefghijklmnop", 10, "abcdefg..."},
		{"no room for marker", "abcdef", 2, "ab"},
		{"unicode counted in runes", "héllo wörld!", 10, "héllo w..."},
		{"negative length", "abc", -1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.maxLen))
		})
	}
}

func TestTruncateDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"newlines replaced with spaces", "hello\nworld", 20, "hello world"},
		{"multiple newlines collapsed", "hello\n\n\nworld", 20, "hello world"},
		{"carriage returns and tabs", "hello\r\n\tworld", 20, "hello world"},
		{"collapsed then truncated", "hello   world this is a long string", 15, "hello world ..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateDescription(tt.input, tt.maxLen))
		})
	}
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "abc", Prefix("abc", 5))
	assert.Equal(t, "ab", Prefix("abc", 2))
	assert.Equal(t, "日本", Prefix("日本語", 2))
	assert.Equal(t, "", Prefix("abc", -3))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "assert 1 == 2...", Preview("assert\n  1 == 2", 100))
	assert.Equal(t, "asse...", Preview("assert 1 == 2", 4))
	assert.Equal(t, "...", Preview("", 10))
}
