package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"specprobe/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is the dotenv file picked up from the working directory.
const DefaultEnvFile = ".env"

// Load builds the effective configuration: defaults, then the YAML file at
// configPath (if given), then DefaultEnvFile, then environment variables.
func Load(configPath string) (Config, error) {
	return LoadWithEnvFile(configPath, DefaultEnvFile)
}

// LoadWithEnvFile is Load with an explicit dotenv path. An empty envFile
// skips dotenv loading.
func LoadWithEnvFile(configPath, envFile string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, NewConfigurationError(envFile, "env", "could not read dotenv file", err)
			}
		} else {
			logging.Debug("ConfigLoader", "Loaded environment from %s", envFile)
		}
	}

	applyEnvironment(&cfg, os.LookupEnv)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			ce := NewConfigurationError(path, "io", "configuration file not found", err)
			ce.Suggestions = []string{"run 'specprobe init' to create a default configuration"}
			return ce
		}
		return NewConfigurationError(path, "io", "could not read configuration file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		ce := NewConfigurationError(path, "parse", "invalid YAML", err)
		ce.Details = err.Error()
		return ce
	}

	cfg.source = path
	logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	return nil
}

// applyEnvironment overrides cfg with values from the environment. Values that
// cannot be converted are logged and ignored.
func applyEnvironment(cfg *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			*dst = strings.EqualFold(strings.TrimSpace(v), "true")
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				logging.Warn("ConfigLoader", "Failed to convert %s=%s: %v", key, v, err)
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := parseSeconds(v)
			if err != nil {
				logging.Warn("ConfigLoader", "Failed to convert %s=%s: %v", key, v, err)
				return
			}
			*dst = d
		}
	}

	str("API_BASE_URL", &cfg.API.BaseURL)
	duration("API_TIMEOUT", &cfg.API.Timeout)
	str("API_VERSION", &cfg.API.Version)
	str("AUTH_TOKEN", &cfg.Auth.Token)
	str("AUTH_HEADER", &cfg.Auth.Header)
	str("AUTH_SCHEME", &cfg.Auth.Scheme)
	str("OUTPUT_DIR", &cfg.Output.Dir)
	flag("GENERATE_HAPPY_PATH", &cfg.Generator.HappyPath)
	flag("GENERATE_EDGE_CASES", &cfg.Generator.EdgeCases)
	flag("GENERATE_ERROR_SCENARIOS", &cfg.Generator.ErrorScenarios)
	flag("GENERATE_SECURITY_TESTS", &cfg.Generator.SecurityTests)
	flag("GENERATE_INTEGRATION_TESTS", &cfg.Generator.IntegrationTests)
	flag("GENERATE_PERFORMANCE_TESTS", &cfg.Generator.PerformanceTests)
	flag("GENERATE_SPECS", &cfg.Generator.GenerateSpecs)
	flag("GENERATE_CODE", &cfg.Generator.GenerateCode)
	integer("PERFORMANCE_SLA_MS", &cfg.Generator.PerformanceSLAMs)
	str("TEST_FRAMEWORK", &cfg.Generator.TestFramework)
	str("LANGUAGE", &cfg.Generator.Language)
	duration("RUNNER_TIMEOUT", &cfg.Runner.Timeout)
	str("OLLAMA_URL", &cfg.LLM.BaseURL)
	str("OLLAMA_MODEL", &cfg.LLM.Model)
	duration("LLM_TIMEOUT", &cfg.LLM.Timeout)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("MOCK_SERVER_ADDR", &cfg.Mock.Addr)

	if v, ok := lookup("TEST_COMMAND"); ok {
		if fields := strings.Fields(v); len(fields) > 0 {
			cfg.Runner.Command = fields
		}
	}
}

// parseSeconds accepts either a Go duration ("90s", "5m") or a bare number of seconds.
func parseSeconds(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Save writes the configuration as YAML, creating parent directories.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "Saved configuration to %s", path)
	return nil
}

// EnvMap returns the configuration as the environment variables Load understands.
func (c Config) EnvMap() map[string]string {
	return map[string]string{
		"API_BASE_URL":               c.API.BaseURL,
		"API_TIMEOUT":                strconv.Itoa(int(c.API.Timeout / time.Second)),
		"API_VERSION":                c.API.Version,
		"AUTH_TOKEN":                 c.Auth.Token,
		"AUTH_HEADER":                c.Auth.Header,
		"AUTH_SCHEME":                c.Auth.Scheme,
		"OUTPUT_DIR":                 c.Output.Dir,
		"GENERATE_HAPPY_PATH":        strconv.FormatBool(c.Generator.HappyPath),
		"GENERATE_EDGE_CASES":        strconv.FormatBool(c.Generator.EdgeCases),
		"GENERATE_ERROR_SCENARIOS":   strconv.FormatBool(c.Generator.ErrorScenarios),
		"GENERATE_SECURITY_TESTS":    strconv.FormatBool(c.Generator.SecurityTests),
		"GENERATE_INTEGRATION_TESTS": strconv.FormatBool(c.Generator.IntegrationTests),
		"GENERATE_PERFORMANCE_TESTS": strconv.FormatBool(c.Generator.PerformanceTests),
		"PERFORMANCE_SLA_MS":         strconv.Itoa(c.Generator.PerformanceSLAMs),
		"TEST_FRAMEWORK":             c.Generator.TestFramework,
		"TEST_COMMAND":               strings.Join(c.Runner.Command, " "),
		"RUNNER_TIMEOUT":             strconv.Itoa(int(c.Runner.Timeout / time.Second)),
		"OLLAMA_URL":                 c.LLM.BaseURL,
		"OLLAMA_MODEL":               c.LLM.Model,
		"LLM_TIMEOUT":                strconv.Itoa(int(c.LLM.Timeout / time.Second)),
		"LOG_LEVEL":                  c.LogLevel,
		"MOCK_SERVER_ADDR":           c.Mock.Addr,
	}
}

// WriteEnvTemplate writes the configuration as a dotenv file.
func (c Config) WriteEnvTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := godotenv.Write(c.EnvMap(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// EnsureDirectories creates the output directory tree used by generate and run.
func (c Config) EnsureDirectories() error {
	for _, dir := range []string{c.Output.Dir, c.TestsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		logging.Debug("ConfigLoader", "Ensured directory exists: %s", dir)
	}
	return nil
}
