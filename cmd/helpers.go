package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"specprobe/internal/app"
	"specprobe/internal/formatting"
	"specprobe/internal/results"
	"specprobe/internal/runner"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// newApplication bootstraps the pipeline from the persistent flags. A non-empty
// outputDir replaces the configured output directory. Logs go to the
// command's stderr.
func newApplication(cmd *cobra.Command, outputDir string) (*app.Application, error) {
	cfg := app.NewConfig(configPath, logLevel, verbose)
	cfg.OutputDir = outputDir
	cfg.LogOutput = cmd.ErrOrStderr()
	return app.NewApplication(cfg)
}

// newFormatter builds the formatter selected by --output-format.
func newFormatter(cmd *cobra.Command) (formatting.Formatter, error) {
	format, err := formatting.ParseFormat(outputFormat)
	if err != nil {
		return nil, newInputError("%v", err)
	}
	out := cmd.OutOrStdout()
	return formatting.New(formatting.Options{
		Format: format,
		Color:  isTerminal(out),
		Out:    out,
	}), nil
}

// structuredOutput reports whether --output-format asks for machine-readable
// output.
func structuredOutput() bool {
	format, err := formatting.ParseFormat(outputFormat)
	return err == nil && (format == formatting.FormatJSON || format == formatting.FormatYAML)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// header renders a section title, styled only on a terminal.
func header(w io.Writer, title string) string {
	if !isTerminal(w) {
		return title
	}
	return headerStyle.Render(title)
}

// startSpinner shows a spinner with message on a terminal. The returned stop
// function is safe to call more than once and prints final when not empty.
func startSpinner(w io.Writer, message string) func(final string) {
	if !isTerminal(w) {
		return func(string) {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	s.Start()
	stopped := false
	return func(final string) {
		if stopped {
			return
		}
		stopped = true
		if final != "" {
			s.FinalMSG = final + "\n"
		}
		s.Stop()
	}
}

// spinnerReporter keeps a spinner running while the engine works and stops
// it before anything is printed.
type spinnerReporter struct {
	inner runner.Reporter
	out   io.Writer
	stop  func(string)
}

func newSpinnerReporter(out io.Writer, inner runner.Reporter) runner.Reporter {
	if !isTerminal(out) {
		return inner
	}
	return &spinnerReporter{inner: inner, out: out, stop: func(string) {}}
}

func (r *spinnerReporter) ReportStart(command string, args []string) {
	r.inner.ReportStart(command, args)
	r.stop = startSpinner(r.out, "Running "+command+"...")
}

func (r *spinnerReporter) ReportResult(res results.TestResult) {
	r.stop("")
	r.inner.ReportResult(res)
}

func (r *spinnerReporter) ReportSummary(s *results.Summary) {
	r.stop("")
	r.inner.ReportSummary(s)
}

// requireFile turns a missing input file into an input error.
func requireFile(kind, path string) error {
	if _, err := os.Stat(path); err != nil {
		return newInputError("%s not found: %s", kind, path)
	}
	return nil
}
