package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"specprobe/internal/results"
	"specprobe/pkg/logging"
)

const (
	// DefaultTimeout bounds one whole engine invocation.
	DefaultTimeout = 600 * time.Second
	// DefaultPerTestTimeout is passed to pytest-timeout.
	DefaultPerTestTimeout = 300 * time.Second

	engineProbeTimeout = 5 * time.Second
)

// Options configures a Runner.
type Options struct {
	// Command is the engine invocation, e.g. ["pytest"] or ["python", "-m", "pytest"]
	Command []string
	// TestDir is searched for test_*.py files
	TestDir string
	// APIBaseURL is exported to the tests as API_URL and API_BASE_URL
	APIBaseURL string
	// Timeout bounds the whole subprocess
	Timeout time.Duration
	// PerTestTimeout is forwarded as --timeout
	PerTestTimeout time.Duration
	// Env holds extra KEY=VALUE entries for the subprocess
	Env []string
	// Reporter receives progress; nil is silent
	Reporter Reporter
}

// Runner executes test files through an external engine and collects the
// results. Engine problems never surface as Go errors: they are recorded in
// the returned summary's Errors.
type Runner struct {
	opts Options
	now  func() time.Time
}

// New returns a Runner with defaults applied.
func New(opts Options) *Runner {
	if len(opts.Command) == 0 {
		opts.Command = []string{"pytest"}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PerTestTimeout <= 0 {
		opts.PerTestTimeout = DefaultPerTestTimeout
	}
	if opts.TestDir == "" {
		opts.TestDir = "."
	}
	if opts.Reporter == nil {
		opts.Reporter = NewQuietReporter(nil)
	}
	return &Runner{opts: opts, now: time.Now}
}

// TestDir returns the directory searched by RunAll.
func (r *Runner) TestDir() string { return r.opts.TestDir }

// RunAll runs every test_*.py below TestDir whose file name contains
// pattern (all files when pattern is empty).
func (r *Runner) RunAll(ctx context.Context, pattern string) *results.Summary {
	files, err := r.FindTestFiles(pattern)
	if err != nil || len(files) == 0 {
		summary := results.NewSummary()
		summary.Start(r.now())
		if err != nil {
			logging.Warn("TestRunner", "Failed to search %s: %v", r.opts.TestDir, err)
		}
		summary.AddError("No test files found in %s", r.opts.TestDir)
		summary.Finish(r.now())
		r.opts.Reporter.ReportSummary(summary)
		return summary
	}
	logging.Info("TestRunner", "Found %d test file(s)", len(files))
	return r.Run(ctx, files)
}

// RunFile runs a single file, resolved relative to TestDir.
func (r *Runner) RunFile(ctx context.Context, name string) *results.Summary {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.opts.TestDir, name)
	}
	if _, err := os.Stat(path); err != nil {
		summary := results.NewSummary()
		summary.Start(r.now())
		summary.AddError("Test file not found: %s", path)
		summary.Finish(r.now())
		r.opts.Reporter.ReportSummary(summary)
		return summary
	}
	return r.Run(ctx, []string{path})
}

// RunByPattern hands pattern to the engine's -k filter over TestDir.
// Matching happens inside the engine, not here.
func (r *Runner) RunByPattern(ctx context.Context, pattern string) *results.Summary {
	return r.execute(ctx, []string{"-k", pattern, r.opts.TestDir})
}

// Run executes the given test files in one engine invocation.
func (r *Runner) Run(ctx context.Context, paths []string) *results.Summary {
	return r.execute(ctx, paths)
}

func (r *Runner) execute(ctx context.Context, targets []string) *results.Summary {
	summary := results.NewSummary()
	summary.Start(r.now())

	args := append([]string{}, r.opts.Command[1:]...)
	args = append(args,
		"-v",
		"--tb=short",
		fmt.Sprintf("--timeout=%d", int(r.opts.PerTestTimeout.Seconds())),
		"-ra",
	)
	args = append(args, targets...)

	r.opts.Reporter.ReportStart(r.opts.Command[0], args)
	logging.Info("TestRunner", "Running command: %s %s", r.opts.Command[0], strings.Join(args, " "))

	runCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.opts.Command[0], args...)
	// children of the engine may keep the output pipes open after a kill
	cmd.WaitDelay = 2 * time.Second
	cmd.Env = append(os.Environ(), r.opts.Env...)
	if r.opts.APIBaseURL != "" {
		cmd.Env = append(cmd.Env, "API_URL="+r.opts.APIBaseURL, "API_BASE_URL="+r.opts.APIBaseURL)
	}

	output, err := cmd.CombinedOutput()

	for _, res := range ParseOutput(string(output)) {
		summary.Add(res)
		r.opts.Reporter.ReportResult(res)
	}
	if msg := r.describeFailure(runCtx, err, output, summary); msg != "" {
		logging.Error("TestRunner", err, "%s", msg)
		summary.AddError("%s", msg)
	}

	summary.Finish(r.now())
	logging.Info("TestRunner", "Test execution completed: %d passed, %d failed", summary.PassedTests, summary.FailedTests)
	r.opts.Reporter.ReportSummary(summary)
	return summary
}

// describeFailure turns an engine problem into a summary error. Test
// failures (pytest exit code 1) are ordinary results and return "".
func (r *Runner) describeFailure(ctx context.Context, err error, output []byte, summary *results.Summary) string {
	if err == nil {
		return ""
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("Test execution timed out after %s", r.opts.Timeout)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return "Test execution was cancelled"
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Sprintf("Failed to launch test engine %q: %v", r.opts.Command[0], err)
	}

	switch code := exitErr.ExitCode(); code {
	case 1:
		return ""
	case 5:
		return "No tests were collected"
	default:
		if summary.TotalTests > 0 && code == 2 {
			// interrupted run; the results gathered so far stand
			return fmt.Sprintf("Test execution was interrupted (exit code %d)", code)
		}
		return fmt.Sprintf("Test engine exited with code %d: %s", code, lastLine(output))
	}
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(ansiPattern.ReplaceAllString(string(output), "")), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return "no output"
}

// EngineVersion runs the engine with --version, e.g. to check that pytest is
// installed.
func (r *Runner) EngineVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, engineProbeTimeout)
	defer cancel()
	args := append(append([]string{}, r.opts.Command[1:]...), "--version")
	cmd := exec.CommandContext(ctx, r.opts.Command[0], args...)
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s --version failed: %w", r.opts.Command[0], err)
	}
	return lastLine(out), nil
}

// FindTestFiles lists test_*.py files below TestDir, sorted, keeping those
// whose base name contains pattern.
func (r *Runner) FindTestFiles(pattern string) ([]string, error) {
	if _, err := os.Stat(r.opts.TestDir); err != nil {
		return nil, err
	}
	var files []string
	err := filepath.WalkDir(r.opts.TestDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasPrefix(name, "test_") || !strings.HasSuffix(name, ".py") {
			return nil
		}
		if pattern != "" && !strings.Contains(name, pattern) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
