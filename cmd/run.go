package cmd

import (
	"fmt"

	"specprobe/internal/app"
	"specprobe/internal/report"

	"github.com/spf13/cobra"
)

var (
	runPattern  string
	runFile     string
	runNoReport bool
	runOutput   string
	runQuiet    bool
)

// runCmd executes the generated tests and writes the reports.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the generated tests and write reports",
	Long: `Runs the generated pytest modules through the configured test engine,
prints a summary and writes test_report.html, test_report.md and
test_report.json to the output directory.

Exits with code 1 when any test failed or the engine reported an error.

Examples:
  specprobe run
  specprobe run --pattern create_agent
  specprobe run --file test_agents_generated.py --no-report`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runPattern, "pattern", "p", "", "Only run tests matching this pytest -k expression")
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "Run a single test module (relative to the tests directory)")
	runCmd.Flags().BoolVar(&runNoReport, "no-report", false, "Do not write report files")
	runCmd.Flags().StringVarP(&runOutput, "output", "d", "", "Output directory (overrides the configuration)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Only print failures and a one-line summary")
	runCmd.MarkFlagsMutuallyExclusive("pattern", "file")
}

func runRun(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd, runOutput)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	structured := structuredOutput()
	reporter := app.ReporterFor(out, runQuiet, verbose, isTerminal(out))
	if structured {
		// the summary is printed by the formatter instead
		reporter = app.ReporterFor(nil, true, false, false)
	}

	summary := application.RunTests(ctx, app.RunOptions{
		Pattern:  runPattern,
		File:     runFile,
		Reporter: newSpinnerReporter(out, reporter),
	})

	if structured {
		formatter, err := newFormatter(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, formatter.FormatSummary(summary))
	}

	if !runNoReport {
		written, errs := application.WriteReports(summary, report.DefaultTitle)
		for _, e := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "Report generation error: %v\n", e)
		}
		if !structured && !runQuiet {
			for _, path := range written {
				fmt.Fprintf(out, "📄 Report saved to %s\n", path)
			}
		}
	}

	if !summary.Successful() {
		return fmt.Errorf("test run failed: %d failed, %d errors", summary.FailedTests, summary.ErrorTests+len(summary.Errors))
	}
	return nil
}
