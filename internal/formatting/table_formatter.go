package formatting

import (
	"fmt"
	"sort"
	"strings"

	"specprobe/internal/openapi"
	"specprobe/internal/results"
	"specprobe/internal/scenario"
	pkgstrings "specprobe/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{options: options}
}

// FormatEndpoints renders one row per operation.
func (f *TableFormatter) FormatEndpoints(endpoints []openapi.Endpoint) string {
	if len(endpoints) == 0 {
		return f.formatEmptyMessage("📋", "No endpoints found")
	}
	t := f.createTable()
	t.AppendHeader(f.header("METHOD", "PATH", "SUMMARY", "TAGS", "RESPONSES"))
	for _, ep := range endpoints {
		summary := ep.Summary
		if ep.Deprecated {
			summary = strings.TrimSpace(summary + " (deprecated)")
		}
		t.AppendRow(table.Row{
			f.colorMethod(ep.Method),
			ep.Path,
			pkgstrings.TruncateDescription(summary, 50),
			strings.Join(ep.Tags, ", "),
			joinInts(ep.DocumentedStatuses()),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d endpoints", len(endpoints))})
	return t.Render()
}

// FormatTestCases renders one row per case followed by the per-type counts.
func (f *TableFormatter) FormatTestCases(cases []scenario.TestCase) string {
	if len(cases) == 0 {
		return f.formatEmptyMessage("📋", "No test cases generated")
	}
	t := f.createTable()
	t.AppendHeader(f.header("ID", "TYPE", "ENDPOINT", "STATUS", "NAME"))
	for _, tc := range cases {
		t.AppendRow(table.Row{
			tc.ID,
			tc.ScenarioType,
			tc.Method + " " + tc.Endpoint,
			tc.ExpectedStatus,
			pkgstrings.Truncate(tc.Name, pkgstrings.DefaultDescriptionMaxLen),
		})
	}

	counts := scenario.CountByType(cases)
	var parts []string
	for _, st := range scenario.AllScenarioTypes {
		if n := counts[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", st, n))
		}
	}
	t.AppendFooter(table.Row{"", "", "", len(cases), strings.Join(parts, ", ")})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
	return t.Render()
}

// FormatSummary renders the counters as key/value rows.
func (f *TableFormatter) FormatSummary(s *results.Summary) string {
	t := f.createTable()
	t.AppendHeader(f.header("METRIC", "VALUE"))
	t.AppendRows([]table.Row{
		{"Total Tests", s.TotalTests},
		{"Passed", s.PassedTests},
		{"Failed", s.FailedTests},
		{"Skipped", s.SkippedTests},
		{"Errors", s.ErrorTests},
		{"Success Rate", fmt.Sprintf("%.1f%%", s.SuccessRate())},
		{"Total Duration", fmt.Sprintf("%.2fs", s.ExecutionTimeSeconds())},
		{"Status", f.colorBanner(s.Banner())},
	})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return t.Render()
}

// FormatData renders maps as key/value tables and slices as numbered lists.
func (f *TableFormatter) FormatData(data interface{}) error {
	out := f.options.writer()
	switch d := data.(type) {
	case map[string]interface{}:
		_, err := fmt.Fprintln(out, f.formatObjectData(d))
		return err
	case []interface{}:
		_, err := fmt.Fprint(out, f.formatArrayData(d))
		return err
	case string:
		_, err := fmt.Fprintln(out, d)
		return err
	default:
		_, err := fmt.Fprintf(out, "%v\n", d)
		return err
	}
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func (f *TableFormatter) header(names ...string) table.Row {
	row := make(table.Row, len(names))
	for i, n := range names {
		row[i] = f.paint(text.FgHiCyan, n)
	}
	return row
}

func (f *TableFormatter) paint(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

func (f *TableFormatter) colorMethod(method string) string {
	switch method {
	case "GET":
		return f.paint(text.FgGreen, method)
	case "POST":
		return f.paint(text.FgYellow, method)
	case "PUT", "PATCH":
		return f.paint(text.FgBlue, method)
	case "DELETE":
		return f.paint(text.FgRed, method)
	}
	return method
}

func (f *TableFormatter) colorBanner(banner string) string {
	switch banner {
	case results.BannerPass:
		return f.paint(text.FgGreen, banner)
	case results.BannerPartial:
		return f.paint(text.FgYellow, banner)
	}
	return f.paint(text.FgRed, banner)
}

func (f *TableFormatter) formatEmptyMessage(icon, message string) string {
	return fmt.Sprintf("%s %s", f.paint(text.FgYellow, icon), f.paint(text.FgYellow, message))
}

// formatObjectData lists a map as sorted key/value rows.
func (f *TableFormatter) formatObjectData(data map[string]interface{}) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := f.createTable()
	t.AppendHeader(f.header("KEY", "VALUE"))
	for _, k := range keys {
		t.AppendRow(table.Row{f.paint(text.FgHiCyan, k), pkgstrings.TruncateDescription(fmt.Sprintf("%v", data[k]), 100)})
	}
	return t.Render()
}

func (f *TableFormatter) formatArrayData(data []interface{}) string {
	if len(data) == 0 {
		return f.formatEmptyMessage("📋", "No items found") + "\n"
	}
	var b strings.Builder
	for i, item := range data {
		fmt.Fprintf(&b, "  %d. %v\n", i+1, item)
	}
	fmt.Fprintf(&b, "\n%s %d items\n", f.paint(text.FgHiBlue, "Total:"), len(data))
	return b.String()
}
