package config

import "time"

const (
	// DefaultAPIBaseURL is the API under test when nothing else is configured.
	DefaultAPIBaseURL = "http://localhost:8080"

	// DefaultOutputDir is where generated tests, mock data and reports go.
	DefaultOutputDir = "./generated_tests"

	// DefaultOllamaURL is the address of a locally running Ollama daemon.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultOllamaModel is the model used for test-code generation.
	DefaultOllamaModel = "llama3"

	// DefaultRunnerTimeout bounds a whole pytest invocation.
	DefaultRunnerTimeout = 600 * time.Second

	// DefaultPerTestTimeout is passed through to pytest-timeout.
	DefaultPerTestTimeout = 300 * time.Second

	// DefaultLLMTimeout bounds a single language-model request.
	DefaultLLMTimeout = 300 * time.Second

	// DefaultMockAddr is the listen address of the mock API server.
	DefaultMockAddr = "127.0.0.1:8080"
)

// Default returns the default configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultAPIBaseURL,
			Timeout: 30 * time.Second,
			Version: "1.0.0",
		},
		Auth: AuthConfig{
			Header: "Authorization",
			Scheme: "Bearer",
		},
		Output: OutputConfig{
			Dir: DefaultOutputDir,
		},
		Generator: GeneratorConfig{
			HappyPath:        true,
			EdgeCases:        true,
			ErrorScenarios:   true,
			SecurityTests:    true,
			IntegrationTests: false,
			PerformanceTests: false,
			PerformanceSLAMs: 200,
			TestFramework:    "pytest",
			Language:         "python",
			GenerateSpecs:    true,
			GenerateCode:     true,
		},
		Runner: RunnerConfig{
			Command:        []string{"pytest"},
			Timeout:        DefaultRunnerTimeout,
			PerTestTimeout: DefaultPerTestTimeout,
		},
		LLM: LLMConfig{
			BaseURL: DefaultOllamaURL,
			Model:   DefaultOllamaModel,
			Timeout: DefaultLLMTimeout,
		},
		Mock: MockConfig{
			Addr: DefaultMockAddr,
		},
		LogLevel: "INFO",
	}
}
