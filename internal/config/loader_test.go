package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 600*time.Second, cfg.Runner.Timeout)
	assert.Equal(t, 300*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, []string{"pytest"}, cfg.Runner.Command)
	assert.False(t, cfg.Generator.IntegrationTests)
	assert.Equal(t, "defaults", cfg.Source())
}

func TestLoadWithEnvFile_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "specprobe.yaml")
	content := `
api:
  baseURL: https://api.example.test
  timeout: 45s
generator:
  securityTests: false
  performanceSLAMs: 350
runner:
  command: [python, -m, pytest]
  timeout: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadWithEnvFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test", cfg.API.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Generator.SecurityTests)
	assert.True(t, cfg.Generator.HappyPath, "fields absent from the file keep their defaults")
	assert.Equal(t, 350, cfg.Generator.PerformanceSLAMs)
	assert.Equal(t, []string{"python", "-m", "pytest"}, cfg.Runner.Command)
	assert.Equal(t, 2*time.Minute, cfg.Runner.Timeout)
	assert.Equal(t, path, cfg.Source())
}

func TestLoadWithEnvFile_MissingFile(t *testing.T) {
	_, err := LoadWithEnvFile(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "io", ce.ErrorType)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, ce.DetailedError(), "specprobe init")
}

func TestLoadWithEnvFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0644))

	_, err := LoadWithEnvFile(path, "")
	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "parse", ce.ErrorType)
}

func TestApplyEnvironment(t *testing.T) {
	env := map[string]string{
		"API_BASE_URL":            "http://staging:9000",
		"API_TIMEOUT":             "12",
		"AUTH_TOKEN":              "secret",
		"GENERATE_EDGE_CASES":     "False",
		"GENERATE_SECURITY_TESTS": "TRUE",
		"PERFORMANCE_SLA_MS":      "not-a-number",
		"RUNNER_TIMEOUT":          "90s",
		"TEST_COMMAND":            "python -m pytest",
		"OLLAMA_MODEL":            "codellama",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	applyEnvironment(&cfg, lookup)

	assert.Equal(t, "http://staging:9000", cfg.API.BaseURL)
	assert.Equal(t, 12*time.Second, cfg.API.Timeout)
	assert.Equal(t, "secret", cfg.Auth.Token)
	assert.False(t, cfg.Generator.EdgeCases)
	assert.True(t, cfg.Generator.SecurityTests)
	assert.Equal(t, 200, cfg.Generator.PerformanceSLAMs, "unparsable values are ignored")
	assert.Equal(t, 90*time.Second, cfg.Runner.Timeout)
	assert.Equal(t, []string{"python", "-m", "pytest"}, cfg.Runner.Command)
	assert.Equal(t, "codellama", cfg.LLM.Model)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = " "
	cfg.API.Timeout = 0
	cfg.Generator.TestFramework = "jest"
	cfg.Runner.Command = nil

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 4)
	assert.Contains(t, err.Error(), "api.baseURL")
	assert.Contains(t, err.Error(), "pytest, unittest")
}

func TestAuthHeaders(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.AuthHeaders())

	cfg.Auth.Token = "abc"
	assert.Equal(t, map[string]string{"Authorization": "Bearer abc"}, cfg.AuthHeaders())
}

func TestSaveAndWriteEnvTemplate(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.API.BaseURL = "http://api.internal:8000"

	yamlPath := filepath.Join(dir, "nested", "specprobe.yaml")
	require.NoError(t, cfg.Save(yamlPath))

	loaded, err := LoadWithEnvFile(yamlPath, "")
	require.NoError(t, err)
	assert.Equal(t, cfg.API, loaded.API)
	assert.Equal(t, cfg.Runner, loaded.Runner)

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, cfg.WriteEnvTemplate(envPath))

	values, err := godotenv.Read(envPath)
	require.NoError(t, err)
	assert.Equal(t, "http://api.internal:8000", values["API_BASE_URL"])
	assert.Equal(t, "600", values["RUNNER_TIMEOUT"])
	assert.Equal(t, "pytest", values["TEST_COMMAND"])
}

func TestEnsureDirectories(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")

	require.NoError(t, cfg.EnsureDirectories())
	info, err := os.Stat(cfg.TestsDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
