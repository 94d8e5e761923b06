package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"specprobe/internal/results"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/report.html.tmpl
var reportHTML string

var htmlTemplate = template.Must(template.New("report").Funcs(sprig.HtmlFuncMap()).Parse(reportHTML))

type htmlView struct {
	Title            string
	GeneratedAt      string
	Summary          *results.Summary
	SuccessRate      float64
	ExecutionSeconds float64
	Banner           string
	BannerText       string
	Bars             []htmlBar
	Rows             []htmlRow
}

type htmlBar struct {
	Label   string
	Class   string
	Count   int
	Percent float64
}

type htmlRow struct {
	results.TestResult
	Symbol string
	Error  string
}

// RenderHTML returns a standalone HTML page. Every value taken from the
// summary is escaped by html/template.
func RenderHTML(s *results.Summary, opts Options) (string, error) {
	view := htmlView{
		Title:            opts.title(),
		GeneratedAt:      opts.generatedAt(),
		Summary:          s,
		SuccessRate:      s.SuccessRate(),
		ExecutionSeconds: s.ExecutionTimeSeconds(),
		Banner:           s.Banner(),
		BannerText:       bannerText(s.Banner()),
		Bars: []htmlBar{
			{Label: "Passed", Class: "passed", Count: s.PassedTests, Percent: share(s.PassedTests, s.TotalTests)},
			{Label: "Failed", Class: "failed", Count: s.FailedTests, Percent: share(s.FailedTests, s.TotalTests)},
			{Label: "Skipped", Class: "skipped", Count: s.SkippedTests, Percent: share(s.SkippedTests, s.TotalTests)},
		},
	}
	for _, r := range s.TestResults {
		row := htmlRow{TestResult: r, Symbol: statusSymbol(r.Status)}
		if r.ErrorMessage != nil {
			row.Error = *r.ErrorMessage
		}
		view.Rows = append(view.Rows, row)
	}

	var b strings.Builder
	if err := htmlTemplate.Execute(&b, view); err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}
	return b.String(), nil
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
