package llm

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingModel struct {
	reply    string
	prompt   string
	messages []Message
}

func (m *recordingModel) Generate(ctx context.Context, prompt string) string {
	m.prompt = prompt
	return m.reply
}

func (m *recordingModel) Chat(ctx context.Context, messages []Message) string {
	m.messages = messages
	return m.reply
}

func writeInputs(t *testing.T, constitution, spec string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	c := filepath.Join(dir, "constitution.md")
	s := filepath.Join(dir, "spec.md")
	require.NoError(t, os.WriteFile(c, []byte(constitution), 0644))
	require.NoError(t, os.WriteFile(s, []byte(spec), 0644))
	return c, s
}

func TestGenerateTestCases(t *testing.T) {
	model := &recordingModel{reply: "```python\nimport pytest\n\ndef test_ok():\n    pass\n```"}
	gen := NewTestCodeGenerator(model)
	c, s := writeInputs(t, "Principle one", strings.Repeat("x", 2500))

	got := gen.GenerateTestCases(context.Background(), c, s, "agents")
	assert.Equal(t, "import pytest\n\ndef test_ok():\n    pass", got)

	assert.Contains(t, model.prompt, "Generate pytest test cases for 'agents' API.")
	assert.Contains(t, model.prompt, "Principle one")
	assert.Contains(t, model.prompt, strings.Repeat("x", 2000)+"\n")
	assert.NotContains(t, model.prompt, strings.Repeat("x", 2001))
}

func TestGenerateTestCasesChat(t *testing.T) {
	model := &recordingModel{reply: "import pytest\n"}
	gen := NewTestCodeGenerator(model)
	c, s := writeInputs(t, "constitution", "spec")

	got := gen.GenerateTestCasesChat(context.Background(), c, s, "policies")
	assert.Equal(t, "import pytest\n", got)
	require.Len(t, model.messages, 2)
	assert.Equal(t, "system", model.messages[0].Role)
	assert.Contains(t, model.messages[1].Content, "'policies' API")
}

func TestGenerateTestCasesMissingInput(t *testing.T) {
	model := &recordingModel{reply: "import pytest"}
	gen := NewTestCodeGenerator(model)
	c, _ := writeInputs(t, "constitution", "spec")

	assert.Equal(t, "", gen.GenerateTestCases(context.Background(), c, filepath.Join(t.TempDir(), "nope.md"), "agents"))
	assert.Empty(t, model.prompt)

	empty, s := writeInputs(t, "", "spec")
	assert.Equal(t, "", gen.GenerateTestCasesChat(context.Background(), empty, s, "agents"))
	assert.Nil(t, model.messages)
}

func TestWithPromptTemplate(t *testing.T) {
	model := &recordingModel{reply: "import pytest\n"}
	base := NewTestCodeGenerator(model)
	c, s := writeInputs(t, "be strict", "spec mentions {{ resource }}")

	custom, err := base.WithPromptTemplate("Write {{ test_count }} tests for {{ .resource }}.\n{{ constitution }}\n{{ specification }}")
	require.NoError(t, err)

	custom.GenerateTestCases(context.Background(), c, s, "agents")
	assert.Equal(t, "Write 15-20 tests for agents.\nbe strict\nspec mentions {{ resource }}", model.prompt)

	custom.GenerateTestCasesChat(context.Background(), c, s, "agents")
	require.Len(t, model.messages, 2)
	assert.Equal(t, model.prompt, model.messages[1].Content)

	base.GenerateTestCases(context.Background(), c, s, "agents")
	assert.Contains(t, model.prompt, "Generate pytest test cases for 'agents' API.")
}

func TestWithPromptTemplateRejectsUnknownVariables(t *testing.T) {
	gen := NewTestCodeGenerator(&recordingModel{})

	_, err := gen.WithPromptTemplate("Tests for {{ resource }} per {{ plan }}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan")

	_, err = gen.WithPromptTemplate("  ")
	require.Error(t, err)
}

func TestCleanCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"python fence", "```python\nimport pytest\n```", "import pytest"},
		{"bare fence", "```\nimport pytest\n```\n", "import pytest"},
		{"no fences", "import pytest\n", "import pytest\n"},
		{"closing only", "import pytest\n```", "import pytest"},
		{"code on fence line", "```import pytest\n```", "import pytest"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCodeFences(tt.in))
		})
	}
}
