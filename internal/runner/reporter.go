package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"specprobe/internal/results"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Reporter receives progress from a Runner.
type Reporter interface {
	// ReportStart is called before the engine is launched
	ReportStart(command string, args []string)
	// ReportResult is called once per parsed test result
	ReportResult(result results.TestResult)
	// ReportSummary is called when the run is complete
	ReportSummary(summary *results.Summary)
}

var (
	bannerBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Bold(true)

	bannerColors = map[string]lipgloss.Color{
		results.BannerPass:    lipgloss.Color("2"),
		results.BannerPartial: lipgloss.Color("3"),
		results.BannerFail:    lipgloss.Color("1"),
	}
)

// RenderBanner draws the boxed PASS/PARTIAL/FAIL line for a summary.
func RenderBanner(s *results.Summary, color bool) string {
	banner := s.Banner()
	line := fmt.Sprintf("%s  %.1f%% success (%d/%d passed)", banner, s.SuccessRate(), s.PassedTests, s.TotalTests)
	style := bannerBox
	if color {
		style = style.BorderForeground(bannerColors[banner]).Foreground(bannerColors[banner])
	}
	return style.Render(line)
}

// SummaryTable renders the counters as a go-pretty table.
func SummaryTable(s *results.Summary) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Total Tests", s.TotalTests},
		{"Passed", s.PassedTests},
		{"Failed", s.FailedTests},
		{"Skipped", s.SkippedTests},
		{"Errors", s.ErrorTests},
		{"Success Rate", fmt.Sprintf("%.1f%%", s.SuccessRate())},
		{"Total Duration", fmt.Sprintf("%.2fs", s.ExecutionTimeSeconds())},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	return t.Render()
}

// consoleReporter prints human-readable progress.
type consoleReporter struct {
	out     io.Writer
	verbose bool
	color   bool
}

// NewConsoleReporter prints the command, per-test lines in verbose mode and
// a summary table with a banner.
func NewConsoleReporter(out io.Writer, verbose, color bool) Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &consoleReporter{out: out, verbose: verbose, color: color}
}

func (r *consoleReporter) ReportStart(command string, args []string) {
	fmt.Fprintf(r.out, "🧪 Running tests\n")
	if r.verbose {
		fmt.Fprintf(r.out, "   • Command: %s %s\n", command, strings.Join(args, " "))
	}
}

func (r *consoleReporter) ReportResult(res results.TestResult) {
	if !r.verbose && res.Status == results.StatusPassed {
		return
	}
	symbol := r.symbol(res.Status)
	line := fmt.Sprintf("%s %s::%s", symbol, res.TestFile, res.TestName)
	if res.DurationMs > 0 {
		line += fmt.Sprintf(" (%.0fms)", res.DurationMs)
	}
	fmt.Fprintln(r.out, line)
	if res.ErrorMessage != nil && r.verbose {
		for _, l := range strings.Split(*res.ErrorMessage, "\n") {
			fmt.Fprintf(r.out, "      %s\n", l)
		}
	}
}

func (r *consoleReporter) ReportSummary(s *results.Summary) {
	fmt.Fprintf(r.out, "\n🏁 Test Run Complete\n")
	fmt.Fprintln(r.out, SummaryTable(s))
	fmt.Fprintln(r.out, RenderBanner(s, r.color))
	for _, e := range s.Errors {
		fmt.Fprintf(r.out, "⚠️  %s\n", e)
	}
}

func (r *consoleReporter) symbol(s results.Status) string {
	var sym string
	var c text.Color
	switch s {
	case results.StatusPassed:
		sym, c = "✓", text.FgGreen
	case results.StatusFailed:
		sym, c = "✗", text.FgRed
	case results.StatusSkipped:
		sym, c = "⊘", text.FgYellow
	case results.StatusError:
		sym, c = "!", text.FgHiRed
	default:
		sym, c = "?", text.FgWhite
	}
	if !r.color {
		return sym
	}
	return c.Sprint(sym)
}

// NewQuietReporter only reports failures and a one-line summary.
func NewQuietReporter(out io.Writer) Reporter {
	return &quietReporter{out: out}
}

// quietReporter implements minimal output for CI. A nil writer discards
// everything.
type quietReporter struct {
	out io.Writer
}

func (r *quietReporter) ReportStart(command string, args []string) {}

func (r *quietReporter) ReportResult(res results.TestResult) {
	if r.out == nil || !isFailure(res.Status) {
		return
	}
	fmt.Fprintf(r.out, "✗ %s::%s\n", res.TestFile, res.TestName)
}

func (r *quietReporter) ReportSummary(s *results.Summary) {
	if r.out == nil {
		return
	}
	if s.Successful() {
		fmt.Fprintf(r.out, "✓ All %d tests passed (%.2fs)\n", s.TotalTests, s.ExecutionTimeSeconds())
		return
	}
	fmt.Fprintf(r.out, "✗ %d/%d tests failed (%.2fs)\n", s.FailedTests+s.ErrorTests, s.TotalTests, s.ExecutionTimeSeconds())
	for _, e := range s.Errors {
		fmt.Fprintf(r.out, "  %s\n", e)
	}
}

// NewJSONReporter writes the final summary as JSON.
func NewJSONReporter(out io.Writer) Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &jsonReporter{out: out}
}

type jsonReporter struct {
	out io.Writer
}

func (r *jsonReporter) ReportStart(command string, args []string) {}

func (r *jsonReporter) ReportResult(res results.TestResult) {}

func (r *jsonReporter) ReportSummary(s *results.Summary) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		fmt.Fprintf(r.out, "{\"error\": %q}\n", err.Error())
		return
	}
	fmt.Fprintln(r.out, string(data))
}
