package app

import (
	"fmt"
	"io"

	"specprobe/internal/config"
	"specprobe/internal/llm"
	"specprobe/internal/runner"
	"specprobe/pkg/logging"
)

// Services holds the collaborators built from the configuration.
type Services struct {
	// LLM talks to the Ollama daemon
	LLM *llm.Client

	// TestCodeGenerator builds prompts for LLM-authored tests
	TestCodeGenerator *llm.TestCodeGenerator

	runnerOptions runner.Options
}

// InitializeServices creates the LLM client, the test-code generator and the
// runner settings. Nothing here touches the network.
func InitializeServices(cfg config.Config) (*Services, error) {
	if len(cfg.Runner.Command) == 0 {
		return nil, fmt.Errorf("runner command is empty")
	}
	client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, llm.WithTimeout(cfg.LLM.Timeout))
	logging.Debug("Services", "LLM client for %s (model %s)", client.BaseURL(), client.Model())

	return &Services{
		LLM:               client,
		TestCodeGenerator: llm.NewTestCodeGenerator(client),
		runnerOptions: runner.Options{
			Command:        cfg.Runner.Command,
			TestDir:        cfg.TestsDir(),
			APIBaseURL:     cfg.API.BaseURL,
			Timeout:        cfg.Runner.Timeout,
			PerTestTimeout: cfg.Runner.PerTestTimeout,
		},
	}, nil
}

// NewRunner returns a runner over the generated tests directory reporting to
// reporter. A nil reporter is silent.
func (s *Services) NewRunner(reporter runner.Reporter) *runner.Runner {
	opts := s.runnerOptions
	opts.Reporter = reporter
	return runner.New(opts)
}

// ReporterFor picks the console reporter for humans and the quiet one
// otherwise.
func ReporterFor(out io.Writer, quiet, verbose, color bool) runner.Reporter {
	if quiet {
		return runner.NewQuietReporter(out)
	}
	return runner.NewConsoleReporter(out, verbose, color)
}
