package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	e := New()

	tests := []struct {
		name     string
		tmpl     string
		vars     map[string]string
		expected string
	}{
		{"spaced", "tests for {{ resource }}", map[string]string{"resource": "agents"}, "tests for agents"},
		{"dotted", "tests for {{.resource}}", map[string]string{"resource": "agents"}, "tests for agents"},
		{"repeated", "{{ a }}-{{a}}-{{ .a }}", map[string]string{"a": "x"}, "x-x-x"},
		{"no placeholders", "plain text", nil, "plain text"},
		{"values are not re-expanded", "spec: {{ spec }}", map[string]string{"spec": "uses {{ resource }}"}, "spec: uses {{ resource }}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Render(tt.tmpl, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestRenderMissingVariables(t *testing.T) {
	_, err := New().Render("{{ a }} {{ b }} {{ a }} {{ c }}", map[string]string{"b": "ok"})
	require.Error(t, err)
	assert.Equal(t, "missing template variables: a, c", err.Error())
}

func TestVariables(t *testing.T) {
	assert.Equal(t, []string{"resource", "spec"}, New().Variables("{{ resource }} {{ .spec }} {{resource}}"))
	assert.Empty(t, New().Variables("{{ not valid-name }}"))
}

func TestValidate(t *testing.T) {
	e := New()
	assert.NoError(t, e.Validate("{{ resource }}", []string{"resource", "spec"}))

	err := e.Validate("{{ resource }} {{ plan }}", []string{"resource", "spec"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template variables: plan")
}

func TestMergeVariables(t *testing.T) {
	merged := MergeVariables(
		map[string]string{"a": "1", "b": "2"},
		map[string]string{"b": "3"},
		nil,
	)
	assert.Equal(t, map[string]string{"a": "1", "b": "3"}, merged)
}
