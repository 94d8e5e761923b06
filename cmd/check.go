package cmd

import (
	"fmt"
	"io"

	"specprobe/internal/app"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// checkCmd verifies the prerequisites of the AI workflow.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the prerequisites of the AI workflow",
	Long: `Checks that the Ollama daemon is reachable and the configured model is
pulled, looks for the constitution, specification and plan documents and
probes the test engine.

Missing documents and a missing test engine are warnings. An unreachable
Ollama daemon or a missing model fails the check with exit code 3.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd, "")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	stop := startSpinner(out, "Checking prerequisites...")
	result := application.Check(ctx)
	stop("")

	if structuredOutput() {
		formatter, err := newFormatter(cmd)
		if err != nil {
			return err
		}
		if err := formatter.FormatData(result); err != nil {
			return err
		}
	} else {
		printCheckResult(out, result)
	}

	if !result.Passed {
		return &app.PrerequisiteError{Missing: result.Failed()}
	}
	return nil
}

var checkSymbols = map[app.CheckStatus]struct {
	symbol string
	color  text.Color
}{
	app.CheckOK:   {"✓", text.FgGreen},
	app.CheckWarn: {"⚠", text.FgYellow},
	app.CheckFail: {"✗", text.FgRed},
}

// printCheckResult renders the prerequisite report as a table followed by
// the hints of every item that did not pass.
func printCheckResult(out io.Writer, result app.CheckResult) {
	color := isTerminal(out)

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"", "CHECK", "DETAIL"})
	for _, item := range result.Items {
		mark := checkSymbols[item.Status]
		symbol := mark.symbol
		if color {
			symbol = mark.color.Sprint(symbol)
		}
		t.AppendRow(table.Row{symbol, item.Name, item.Detail})
	}
	fmt.Fprintln(out, t.Render())

	for _, item := range result.Items {
		if item.Status != app.CheckOK && item.Hint != "" {
			fmt.Fprintf(out, "   → %s: %s\n", item.Name, item.Hint)
		}
	}
	if result.Passed {
		fmt.Fprintln(out, "All required prerequisites are met.")
	} else {
		fmt.Fprintln(out, "Required prerequisites are missing.")
	}
}
