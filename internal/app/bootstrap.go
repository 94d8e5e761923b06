package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"specprobe/internal/config"
	"specprobe/pkg/logging"
)

// Application carries the loaded configuration and the collaborators shared
// by the pipelines.
type Application struct {
	config   *Config
	settings config.Config
	services *Services
	now      func() time.Time
}

// NewApplication performs the bootstrap sequence:
//
//  1. configures logging from --log-level / --verbose
//  2. loads the configuration unless cfg.Settings is already set
//  3. reconfigures logging when only the configuration names a level
//  4. initializes the services
func NewApplication(cfg *Config) (*Application, error) {
	var out io.Writer = os.Stderr
	if cfg.LogOutput != nil {
		out = cfg.LogOutput
	}
	logging.InitForCLI(logLevel(cfg.LogLevel, cfg.Verbose), out)

	var settings config.Config
	if cfg.Settings != nil {
		settings = *cfg.Settings
	} else {
		envFile := cfg.EnvFile
		if envFile == "" {
			envFile = config.DefaultEnvFile
		}
		loaded, err := config.LoadWithEnvFile(cfg.ConfigPath, envFile)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration")
			return nil, err
		}
		settings = loaded
		logging.Debug("Bootstrap", "Loaded configuration from %s", settings.Source())
	}

	if cfg.OutputDir != "" {
		settings.Output.Dir = cfg.OutputDir
	}

	if cfg.LogLevel == "" && !cfg.Verbose && settings.LogLevel != "" {
		logging.InitForCLI(logLevel(settings.LogLevel, false), out)
	}

	services, err := InitializeServices(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		settings: settings,
		services: services,
		now:      time.Now,
	}, nil
}

// Settings returns the effective configuration.
func (a *Application) Settings() config.Config { return a.settings }

// Services returns the shared collaborators.
func (a *Application) Services() *Services { return a.services }

func logLevel(name string, verbose bool) logging.LogLevel {
	if verbose {
		return logging.LevelDebug
	}
	if name == "" {
		return logging.LevelInfo
	}
	level, ok := logging.ParseLevel(name)
	if !ok {
		logging.Warn("Bootstrap", "Unknown log level %q, using INFO", name)
	}
	return level
}
