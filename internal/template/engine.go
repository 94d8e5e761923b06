package template

import (
	"fmt"
	"regexp"
	"strings"
)

// Engine fills {{ name }} placeholders in prompt templates. A leading dot
// ({{ .name }}) and missing spaces are accepted.
type Engine struct {
	templatePattern *regexp.Regexp
}

// New creates a new template engine
func New() *Engine {
	return &Engine{
		templatePattern: regexp.MustCompile(`\{\{\s*\.?([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`),
	}
}

// Render replaces every placeholder in one pass, so values that themselves
// contain braces are inserted verbatim. All missing names are reported
// together.
func (e *Engine) Render(tmpl string, vars map[string]string) (string, error) {
	var missing []string
	seen := map[string]bool{}

	out := e.templatePattern.ReplaceAllStringFunc(tmpl, func(placeholder string) string {
		name := e.templatePattern.FindStringSubmatch(placeholder)[1]
		value, ok := vars[name]
		if !ok {
			if !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
			return placeholder
		}
		return value
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Variables returns the distinct placeholder names in order of first use.
func (e *Engine) Variables(tmpl string) []string {
	var names []string
	seen := map[string]bool{}
	for _, match := range e.templatePattern.FindAllStringSubmatch(tmpl, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	return names
}

// Validate reports placeholders that are not among the allowed names.
func (e *Engine) Validate(tmpl string, allowed []string) error {
	known := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		known[name] = true
	}

	var unknown []string
	for _, name := range e.Variables(tmpl) {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown template variables: %s (available: %s)", strings.Join(unknown, ", "), strings.Join(allowed, ", "))
	}
	return nil
}
