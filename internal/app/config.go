package app

import (
	"io"

	"specprobe/internal/config"
)

// Config holds the bootstrap settings taken from the command line.
type Config struct {
	// ConfigPath is the YAML configuration file; empty uses defaults
	ConfigPath string

	// EnvFile is the dotenv file; config.DefaultEnvFile when empty
	EnvFile string

	// LogLevel overrides the configured level when set
	LogLevel string

	// Verbose forces DEBUG logging
	Verbose bool

	// OutputDir overrides the configured output directory when set
	OutputDir string

	// LogOutput receives log lines; os.Stderr when nil
	LogOutput io.Writer

	// Settings is the loaded configuration. When set, loading is skipped.
	Settings *config.Config
}

// NewConfig creates a bootstrap configuration.
func NewConfig(configPath, logLevel string, verbose bool) *Config {
	return &Config{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		Verbose:    verbose,
	}
}
