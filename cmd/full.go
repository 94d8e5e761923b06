package cmd

import (
	"fmt"
	"io"

	"specprobe/internal/app"
	"specprobe/internal/report"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	fullResource string
	fullOpenAPI  string
	fullOutput   string
	fullGenerate bool
)

var fullBanner = lipgloss.NewStyle().
	BorderStyle(lipgloss.DoubleBorder()).
	Padding(0, 2).
	Bold(true)

// fullCmd runs the whole AI workflow.
var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Run the complete workflow: check, mock data, AI tests, run, reports",
	Long: `Runs every step of the AI workflow in order:

  1. check the prerequisites (stops with exit code 3 when they are missing)
  2. write mock_data.json when --openapi is given
  3. generate a pytest module with the language model
  4. run all tests in the tests directory
  5. write the HTML, Markdown and JSON reports

Failures in steps 2 and 3 are reported and the workflow continues with the
tests that already exist.`,
	Args: cobra.NoArgs,
	RunE: runFull,
}

func init() {
	rootCmd.AddCommand(fullCmd)

	fullCmd.Flags().StringVarP(&fullResource, "resource", "r", "agents", "Resource the AI tests should cover")
	fullCmd.Flags().StringVar(&fullOpenAPI, "openapi", "", "OpenAPI document used for mock data")
	fullCmd.Flags().StringVarP(&fullOutput, "output", "d", "", "Output directory (overrides the configuration)")
	fullCmd.Flags().BoolVar(&fullGenerate, "generate", false, "Use the single-prompt generate endpoint instead of chat")
}

func runFull(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd, fullOutput)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	color := isTerminal(out)
	fmt.Fprintln(out, banner(out, "specprobe full workflow"))

	reporter := newSpinnerReporter(out, app.ReporterFor(out, false, verbose, color))
	res, err := application.Full(ctx, app.FullOptions{
		AI: app.AIOptions{
			Resource: fullResource,
			Generate: fullGenerate,
		},
		OpenAPIPath: fullOpenAPI,
		Reporter:    reporter,
		ReportTitle: report.DefaultTitle,
	})
	if res != nil && !res.Check.Passed {
		printCheckResult(out, res.Check)
	}
	if err != nil {
		return err
	}

	printFullResult(out, res)
	if !res.Summary.Successful() {
		return fmt.Errorf("test run failed: %d failed, %d errors", res.Summary.FailedTests, res.Summary.ErrorTests+len(res.Summary.Errors))
	}
	return nil
}

func banner(out io.Writer, title string) string {
	if !isTerminal(out) {
		return "== " + title + " =="
	}
	return fullBanner.BorderForeground(lipgloss.Color("6")).Render(title)
}

func printFullResult(out io.Writer, res *app.FullResult) {
	fmt.Fprintln(out, header(out, "Workflow complete"))
	if res.MockDataFile != "" {
		fmt.Fprintf(out, "   • Mock data: %s\n", res.MockDataFile)
	}
	if res.AIModule != "" {
		fmt.Fprintf(out, "   • AI tests: %s\n", res.AIModule)
	} else {
		fmt.Fprintln(out, "   • AI tests: not generated")
	}
	for _, path := range res.Reports {
		fmt.Fprintf(out, "   • Report: %s\n", path)
	}
}
