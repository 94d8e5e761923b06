package config

import (
	"path/filepath"
	"time"
)

// Config is the top-level configuration structure for specprobe.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Auth      AuthConfig      `yaml:"auth"`
	Output    OutputConfig    `yaml:"output"`
	Generator GeneratorConfig `yaml:"generator"`
	Runner    RunnerConfig    `yaml:"runner"`
	LLM       LLMConfig       `yaml:"llm"`
	Mock      MockConfig      `yaml:"mock"`
	LogLevel  string          `yaml:"logLevel,omitempty"`

	// source records where the configuration was loaded from, for display only.
	source string
}

// APIConfig describes the API under test.
type APIConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
	Version string        `yaml:"version,omitempty"`
}

// AuthConfig describes how generated tests authenticate against the API.
type AuthConfig struct {
	Token  string `yaml:"token,omitempty"`
	Header string `yaml:"header"`
	Scheme string `yaml:"scheme"`
}

// OutputConfig controls where generated artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// GeneratorConfig toggles scenario categories and code generation settings.
type GeneratorConfig struct {
	HappyPath        bool   `yaml:"happyPath"`
	EdgeCases        bool   `yaml:"edgeCases"`
	ErrorScenarios   bool   `yaml:"errorScenarios"`
	SecurityTests    bool   `yaml:"securityTests"`
	IntegrationTests bool   `yaml:"integrationTests"`
	PerformanceTests bool   `yaml:"performanceTests"`
	PerformanceSLAMs int    `yaml:"performanceSLAMs"`
	TestFramework    string `yaml:"testFramework"`
	Language         string `yaml:"language"`
	GenerateSpecs    bool   `yaml:"generateSpecs"`
	GenerateCode     bool   `yaml:"generateCode"`
}

// RunnerConfig configures the external test-execution engine.
type RunnerConfig struct {
	Command        []string      `yaml:"command"`
	Timeout        time.Duration `yaml:"timeout"`
	PerTestTimeout time.Duration `yaml:"perTestTimeout"`
}

// LLMConfig configures the Ollama language-model service.
type LLMConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// MockConfig configures the local mock API server.
type MockConfig struct {
	Addr string `yaml:"addr"`
}

// AuthHeaders returns the headers generated tests send with authenticated
// requests. The map is empty when no token is configured.
func (c Config) AuthHeaders() map[string]string {
	headers := map[string]string{}
	if c.Auth.Token != "" {
		headers[c.Auth.Header] = c.Auth.Scheme + " " + c.Auth.Token
	}
	return headers
}

// TestsDir is the directory generated pytest modules are written to and run from.
func (c Config) TestsDir() string {
	return filepath.Join(c.Output.Dir, "tests", "python")
}

// Source returns the configuration file path the config was loaded from, or
// "defaults" when no file was used.
func (c Config) Source() string {
	if c.source == "" {
		return "defaults"
	}
	return c.source
}
