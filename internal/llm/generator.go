package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"specprobe/internal/template"
	"specprobe/pkg/logging"
	pkgstrings "specprobe/pkg/strings"
)

// excerptLimit caps how much of each input document goes into a prompt.
const excerptLimit = 2000

// Completer is the part of Client the test-code generator needs.
type Completer interface {
	Generate(ctx context.Context, prompt string) string
	Chat(ctx context.Context, messages []Message) string
}

// Variables available to prompt templates.
const (
	VarResource      = "resource"
	VarConstitution  = "constitution"
	VarSpecification = "specification"
	VarTestCount     = "test_count"
)

// PromptVariables lists every name a prompt template may use.
var PromptVariables = []string{VarResource, VarConstitution, VarSpecification, VarTestCount}

var promptDefaults = map[string]string{VarTestCount: "15-20"}

// TestCodeGenerator asks a model to draft a pytest module from a
// constitution document and a feature specification.
type TestCodeGenerator struct {
	model  Completer
	engine *template.Engine
	// custom replaces the built-in user prompt of both modes when set
	custom string
}

// NewTestCodeGenerator wraps a model client.
func NewTestCodeGenerator(model Completer) *TestCodeGenerator {
	return &TestCodeGenerator{model: model, engine: template.New()}
}

// WithPromptTemplate returns a copy of g that uses tmpl instead of the
// built-in prompts. tmpl may use any of PromptVariables as {{ name }}.
func (g *TestCodeGenerator) WithPromptTemplate(tmpl string) (*TestCodeGenerator, error) {
	if strings.TrimSpace(tmpl) == "" {
		return nil, fmt.Errorf("prompt template is empty")
	}
	if err := g.engine.Validate(tmpl, PromptVariables); err != nil {
		return nil, err
	}
	custom := *g
	custom.custom = tmpl
	return &custom, nil
}

// render fills tmpl, or the custom template when one is set.
func (g *TestCodeGenerator) render(tmpl, constitution, spec, resource string) (string, bool) {
	if g.custom != "" {
		tmpl = g.custom
	}
	prompt, err := g.engine.Render(tmpl, template.MergeVariables(promptDefaults, map[string]string{
		VarResource:      resource,
		VarConstitution:  excerpt(constitution),
		VarSpecification: excerpt(spec),
	}))
	if err != nil {
		logging.Error("TestCodeGenerator", err, "Failed to render prompt")
		return "", false
	}
	return prompt, true
}

// GenerateTestCases uses the single-prompt endpoint. It returns "" when
// either input cannot be read or the model call fails.
func (g *TestCodeGenerator) GenerateTestCases(ctx context.Context, constitutionPath, specPath, resource string) string {
	constitution, spec, ok := readInputs(constitutionPath, specPath)
	if !ok {
		return ""
	}
	prompt, ok := g.render(generatePrompt, constitution, spec, resource)
	if !ok {
		return ""
	}
	logging.Info("TestCodeGenerator", "Generating test cases for %s...", resource)
	return CleanCodeFences(g.model.Generate(ctx, prompt))
}

// GenerateTestCasesChat uses the chat endpoint with a system instruction.
func (g *TestCodeGenerator) GenerateTestCasesChat(ctx context.Context, constitutionPath, specPath, resource string) string {
	constitution, spec, ok := readInputs(constitutionPath, specPath)
	if !ok {
		return ""
	}
	prompt, ok := g.render(chatPrompt, constitution, spec, resource)
	if !ok {
		return ""
	}
	messages := []Message{
		{Role: "system", Content: systemInstruction},
		{Role: "user", Content: prompt},
	}
	logging.Info("TestCodeGenerator", "Generating test cases for %s using chat...", resource)
	return CleanCodeFences(g.model.Chat(ctx, messages))
}

func readInputs(constitutionPath, specPath string) (string, string, bool) {
	constitution := readFile(constitutionPath)
	spec := readFile(specPath)
	if constitution == "" || spec == "" {
		logging.Warn("TestCodeGenerator", "Failed to read constitution or spec files")
		return "", "", false
	}
	return constitution, spec, true
}

func readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Error("TestCodeGenerator", err, "Error reading file %s", path)
		return ""
	}
	return string(data)
}

// excerpt keeps the first excerptLimit characters.
func excerpt(text string) string {
	return pkgstrings.Prefix(text, excerptLimit)
}

// CleanCodeFences strips a leading ``` or ```python line and a trailing ```
// that models add despite being told not to. Text without fences is returned
// unchanged.
func CleanCodeFences(code string) string {
	trimmed := strings.TrimSpace(code)
	if !strings.HasPrefix(trimmed, "```") && !strings.HasSuffix(trimmed, "```") {
		return code
	}
	if rest, ok := strings.CutPrefix(trimmed, "```"); ok {
		// language tag such as "python"
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], " (=") {
			rest = rest[nl+1:]
		}
		trimmed = rest
	}
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.Trim(trimmed, "\n")
}

const systemInstruction = "You are an expert API testing engineer. Generate ONLY raw Python pytest code. " +
	"NO markdown code blocks. NO triple backticks. NO explanations or comments."

const generatePrompt = `Generate pytest test cases for '{{ resource }}' API.

CONSTITUTION (key points):
{{ constitution }}

SPECIFICATION (key points):
{{ specification }}

REQUIREMENTS:
- Use pytest framework
- Include fixtures for API client and auth
- Test all acceptance scenarios
- Include happy path, error cases, edge cases
- Use proper assertions
- Include docstrings
- Generate clean, production-ready code
- Target {{ test_count }} comprehensive test cases

CRITICAL: Generate ONLY raw Python test code. NO markdown code blocks. NO triple backticks. NO explanations.

Start with: import pytest
End with: the last test function

Generate the complete test module now. Only Python code, nothing else:`

const chatPrompt = `Generate pytest test cases for '{{ resource }}' API.

CONSTITUTION (key points):
{{ constitution }}

SPECIFICATION (key points):
{{ specification }}

Requirements:
- Use pytest with fixtures
- Test all acceptance scenarios
- Include happy path, error cases, edge cases
- Use proper assertions
- Include docstrings
- Generate {{ test_count }} comprehensive tests
- Include security tests
- Use realistic test data

CRITICAL INSTRUCTIONS:
- Generate ONLY raw Python code
- NO markdown code blocks
- NO triple backticks
- NO explanations
- Start with: import pytest
- End with: the last test function

Generate the complete test module now:`
