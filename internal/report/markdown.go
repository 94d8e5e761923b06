package report

import (
	"fmt"
	"sort"
	"strings"

	"specprobe/internal/results"
	pkgstrings "specprobe/pkg/strings"
)

// errorPreviewLength is how much of a failure body fits in a table cell.
const errorPreviewLength = 50

// RenderMarkdown returns the Markdown report.
func RenderMarkdown(s *results.Summary, opts Options) string {
	var b strings.Builder
	rate := s.SuccessRate()

	fmt.Fprintf(&b, "# %s\n\n", opts.title())
	fmt.Fprintf(&b, "**Generated**: %s\n\n", opts.generatedAt())

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Total Tests | %d |\n", s.TotalTests)
	fmt.Fprintf(&b, "| Passed | %d ✓ |\n", s.PassedTests)
	fmt.Fprintf(&b, "| Failed | %d ✗ |\n", s.FailedTests)
	fmt.Fprintf(&b, "| Skipped | %d ⊘ |\n", s.SkippedTests)
	fmt.Fprintf(&b, "| Errors | %d |\n", s.ErrorTests)
	fmt.Fprintf(&b, "| Success Rate | %.1f%% |\n", rate)
	fmt.Fprintf(&b, "| Total Duration | %.2fs |\n", s.ExecutionTimeSeconds())
	fmt.Fprintf(&b, "| Avg Duration | %.2fms |\n\n", s.AverageDurationMs())

	b.WriteString("## Status\n\n")
	fmt.Fprintf(&b, "%s - %.1f%% Success Rate\n\n", bannerText(s.Banner()), rate)

	b.WriteString("## Test Results\n\n")
	groups := s.ByFile()
	files := make([]string, 0, len(groups))
	for f := range groups {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, file := range files {
		group := groups[file]
		passed, failed, errored := 0, 0, 0
		for _, r := range group {
			switch r.Status {
			case results.StatusPassed:
				passed++
			case results.StatusFailed:
				failed++
			case results.StatusError:
				errored++
			}
		}
		fmt.Fprintf(&b, "### %s\n\n", file)
		fmt.Fprintf(&b, "**Results**: %d passed, %d failed", passed, failed)
		if errored > 0 {
			fmt.Fprintf(&b, ", %d errored", errored)
		}
		b.WriteString("\n\n")
		b.WriteString("| Test | Status | Duration | Error |\n")
		b.WriteString("|------|--------|----------|-------|\n")
		for _, r := range group {
			fmt.Fprintf(&b, "| %s | %s %s | %.2fms | %s |\n",
				escapeCell(r.TestName), statusSymbol(r.Status), r.Status, r.DurationMs, errorPreview(r.ErrorMessage))
		}
		b.WriteString("\n")
	}

	if len(s.Errors) > 0 {
		b.WriteString("## Errors\n\n")
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}

// errorPreview flattens a failure body onto one table-safe line and cuts it
// to errorPreviewLength runes.
func errorPreview(msg *string) string {
	if msg == nil || strings.TrimSpace(*msg) == "" {
		return "-"
	}
	flat := escapeCell(pkgstrings.SingleLine(*msg))
	return pkgstrings.Prefix(flat, errorPreviewLength) + pkgstrings.Ellipsis
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
