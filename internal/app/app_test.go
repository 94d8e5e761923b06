package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"specprobe/internal/config"
	"specprobe/internal/emitter"
	"specprobe/internal/mockdata"
	"specprobe/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agentsSpec = `
openapi: 3.0.3
info: {title: Agents API, version: '1.0'}
paths:
  /api/v1/agents:
    post:
      summary: Create Agent
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name: {type: string}
      responses:
        '201': {description: created}
        '409': {description: conflict}
  /api/v1/policies/{id}:
    get:
      summary: Get Policy
      parameters:
        - {name: id, in: path, required: true, schema: {type: string}}
      responses:
        '200': {description: ok}
`

const agentsStories = `# Stories

## Story 1: Create Agent
As an admin I want to onboard agents.

1. **Given** a valid payload, **When** POST /api/v1/agents is called, **Then** the agent is created
`

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	settings := config.Default()
	settings.Output.Dir = t.TempDir()
	if mutate != nil {
		mutate(&settings)
	}
	a, err := NewApplication(&Config{Settings: &settings, LogOutput: io.Discard})
	require.NoError(t, err)
	return a
}

func TestNewApplicationLoadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "specprobe.yaml", "api:\n  baseURL: http://api.test:9000\n")

	a, err := NewApplication(&Config{ConfigPath: path, EnvFile: filepath.Join(dir, "missing.env"), LogOutput: io.Discard})
	require.NoError(t, err)
	assert.Equal(t, "http://api.test:9000", a.Settings().API.BaseURL)
	assert.Equal(t, path, a.Settings().Source())
	assert.NotNil(t, a.Services().LLM)
}

func TestNewApplicationMissingConfigFile(t *testing.T) {
	_, err := NewApplication(&Config{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"), LogOutput: io.Discard})
	var ce *config.ConfigurationError
	assert.True(t, errors.As(err, &ce), "got %v", err)
}

func TestNewApplicationRejectsEmptyRunnerCommand(t *testing.T) {
	settings := config.Default()
	settings.Runner.Command = nil
	_, err := NewApplication(&Config{Settings: &settings, LogOutput: io.Discard})
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	gen := config.Default().Generator
	set := Categories(gen)
	assert.True(t, set.Enabled(scenario.HappyPath))
	assert.True(t, set.Enabled(scenario.Security))
	assert.False(t, set.Enabled(scenario.Performance))

	gen = config.GeneratorConfig{PerformanceTests: true}
	set = Categories(gen)
	assert.True(t, set.Enabled(scenario.Performance))
	assert.False(t, set.Enabled(scenario.HappyPath))
}

func TestGenerateWritesModulesAndSpecification(t *testing.T) {
	a := newTestApp(t, nil)
	in := t.TempDir()
	specPath := writeInput(t, in, "openapi.yaml", agentsSpec)
	storiesPath := writeInput(t, in, "stories.md", agentsStories)

	res, err := a.Generate(context.Background(), GenerateOptions{SpecPath: specPath, StoriesPath: storiesPath})
	require.NoError(t, err)

	tests := a.Settings().TestsDir()
	assert.Equal(t, []string{
		filepath.Join(tests, "test_agents_generated.py"),
		filepath.Join(tests, "test_policies_generated.py"),
	}, res.Modules)
	assert.Equal(t, filepath.Join(a.Settings().Output.Dir, emitter.SpecificationFile), res.SpecificationFile)

	code, err := os.ReadFile(res.Modules[0])
	require.NoError(t, err)
	assert.Contains(t, string(code), "def test_create_agent_happy_path(session):")
	assert.Contains(t, string(code), "Story: US1 Create Agent")

	doc, err := os.ReadFile(res.SpecificationFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc), "# Agents API Test Specification"))

	again, err := a.Generate(context.Background(), GenerateOptions{SpecPath: specPath, StoriesPath: storiesPath})
	require.NoError(t, err)
	second, err := os.ReadFile(again.Modules[0])
	require.NoError(t, err)
	assert.Equal(t, string(code), string(second))
}

func TestGenerateSpecOnly(t *testing.T) {
	a := newTestApp(t, nil)
	specPath := writeInput(t, t.TempDir(), "openapi.yaml", agentsSpec)

	res, err := a.Generate(context.Background(), GenerateOptions{SpecPath: specPath, SpecOnly: true})
	require.NoError(t, err)
	assert.Empty(t, res.Modules)
	assert.NotEmpty(t, res.SpecificationFile)
	assert.NotEmpty(t, res.Cases)
}

func TestGenerateMissingSpec(t *testing.T) {
	a := newTestApp(t, nil)
	_, err := a.Generate(context.Background(), GenerateOptions{SpecPath: filepath.Join(t.TempDir(), "none.yaml")})
	assert.Error(t, err)
}

func TestMockData(t *testing.T) {
	a := newTestApp(t, nil)
	specPath := writeInput(t, t.TempDir(), "openapi.yaml", agentsSpec)

	path, n, err := a.MockData(specPath)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, filepath.Join(a.Settings().Output.Dir, mockdata.MockDataFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "POST /api/v1/agents")
}

func TestFindInputs(t *testing.T) {
	root := t.TempDir()
	near := filepath.Join(root, "work")
	writeInput(t, root, filepath.Join(".specify", "memory", "constitution.md"), "rules")
	writeInput(t, root, filepath.Join("specs", "002-b", "spec.md"), "b")
	writeInput(t, root, filepath.Join("specs", "001-a", "spec.md"), "a")
	writeInput(t, near, filepath.Join("specs", "009-z", "plan.md"), "plan")

	in := FindInputs([]string{near, root})
	assert.Equal(t, filepath.Join(root, ".specify", "memory", "constitution.md"), in.Constitution)
	assert.Equal(t, filepath.Join(root, "specs", "001-a", "spec.md"), in.Specification)
	assert.Equal(t, filepath.Join(near, "specs", "009-z", "plan.md"), in.Plan)

	assert.Equal(t, Inputs{}, FindInputs([]string{t.TempDir()}))
}

func TestAIModuleFileName(t *testing.T) {
	assert.Equal(t, "test_agents_ai.py", AIModuleFileName("agents"))
	assert.Equal(t, "test_root_ai.py", AIModuleFileName(""))
}

// fakeOllama serves a fixed model list and chat reply.
func fakeOllama(t *testing.T, models []string, reply string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		list := make([]map[string]string, 0, len(models))
		for _, m := range models {
			list = append(list, map[string]string{"name": m})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"models": list})
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": reply},
			"done":    true,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func fakeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine is a POSIX shell script")
	}
	path := filepath.Join(t.TempDir(), "fake-pytest")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestCheck(t *testing.T) {
	ollama := fakeOllama(t, []string{"llama3:latest"}, "")
	engine := fakeEngine(t, `echo "pytest 8.3.2"`)
	a := newTestApp(t, func(c *config.Config) {
		c.LLM.BaseURL = ollama.URL
		c.Runner.Command = []string{engine}
	})

	res := a.Check(context.Background())
	assert.True(t, res.Passed)
	assert.Empty(t, res.Failed())
	require.Len(t, res.Items, 6)
	assert.Equal(t, CheckOK, res.Items[0].Status)
	assert.Equal(t, CheckOK, res.Items[1].Status)
	assert.Equal(t, "pytest 8.3.2", res.Items[5].Detail)
}

func TestCheckFailsWithoutModel(t *testing.T) {
	ollama := fakeOllama(t, []string{"mistral:7b"}, "")
	a := newTestApp(t, func(c *config.Config) {
		c.LLM.BaseURL = ollama.URL
		c.Runner.Command = []string{filepath.Join(t.TempDir(), "no-pytest")}
	})

	res := a.Check(context.Background())
	assert.False(t, res.Passed)
	assert.Equal(t, []string{"Model llama3"}, res.Failed())
	assert.Equal(t, CheckWarn, res.Items[5].Status)
}

func TestGenerateAI(t *testing.T) {
	ollama := fakeOllama(t, []string{"llama3"}, "```python\ndef test_list_agents():\n    assert True\n```")
	a := newTestApp(t, func(c *config.Config) { c.LLM.BaseURL = ollama.URL })
	specPath := writeInput(t, t.TempDir(), "spec.md", "# Agents\nGET /agents lists agents")

	path, err := a.GenerateAI(context.Background(), AIOptions{Resource: "agents", SpecPath: specPath, ConstitutionPath: specPath})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(a.Settings().TestsDir(), "test_agents_ai.py"), path)

	code, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "def test_list_agents():\n    assert True\n", string(code))
}

func TestGenerateAIEmptyReply(t *testing.T) {
	ollama := fakeOllama(t, []string{"llama3"}, "   ")
	a := newTestApp(t, func(c *config.Config) { c.LLM.BaseURL = ollama.URL })
	specPath := writeInput(t, t.TempDir(), "spec.md", "# Agents")

	_, err := a.GenerateAI(context.Background(), AIOptions{SpecPath: specPath, ConstitutionPath: specPath})
	assert.ErrorIs(t, err, ErrNoTestCode)
}

func TestFullStopsOnMissingPrerequisites(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.LLM.BaseURL = "http://127.0.0.1:1" })

	res, err := a.Full(context.Background(), FullOptions{})
	var pe *PrerequisiteError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Contains(t, pe.Missing, "Ollama connection")
	assert.Nil(t, res.Summary)
}

func TestFullRunsTestsAndWritesReports(t *testing.T) {
	ollama := fakeOllama(t, []string{"llama3"}, "def test_ok():\n    pass\n")
	engine := fakeEngine(t, `
case "$1" in --version) echo "pytest 8.3.2"; exit 0;; esac
echo "tests/python/test_agents_ai.py::test_ok PASSED [0.05s]"`)
	a := newTestApp(t, func(c *config.Config) {
		c.LLM.BaseURL = ollama.URL
		c.Runner.Command = []string{engine}
	})
	in := t.TempDir()
	specMD := writeInput(t, in, "spec.md", "# Agents")
	openapiPath := writeInput(t, in, "openapi.yaml", agentsSpec)

	var out bytes.Buffer
	res, err := a.Full(context.Background(), FullOptions{
		AI:          AIOptions{Resource: "agents", SpecPath: specMD, ConstitutionPath: specMD},
		OpenAPIPath: openapiPath,
		Reporter:    ReporterFor(&out, true, false, false),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.MockDataFile)
	assert.NotEmpty(t, res.AIModule)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 1, res.Summary.PassedTests)
	assert.Len(t, res.Reports, 3)
	assert.Contains(t, out.String(), "All 1 tests passed")
}
