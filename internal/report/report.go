package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"specprobe/internal/results"
	"specprobe/pkg/logging"
)

// Report file names written by WriteAll.
const (
	HTMLFile     = "test_report.html"
	MarkdownFile = "test_report.md"
	JSONFile     = "test_report.json"
)

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "API Test Report"

// Options controls the parts of a report that do not come from the summary.
type Options struct {
	// Title is the report heading
	Title string
	// Now returns the generation time; time.Now when nil
	Now func() time.Time
}

func (o Options) title() string {
	if o.Title == "" {
		return DefaultTitle
	}
	return o.Title
}

func (o Options) generatedAt() string {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	return now().Format("2006-01-02 15:04:05")
}

// WriteAll renders every format into dir. A failing format is logged and
// reported in errs; the others are still written.
func WriteAll(dir string, s *results.Summary, opts Options) (written []string, errs []error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.Error("ReportGenerator", err, "Failed to create report directory %s", dir)
		return nil, []error{fmt.Errorf("failed to create report directory %s: %w", dir, err)}
	}

	renderers := []struct {
		name   string
		render func() (string, error)
	}{
		{HTMLFile, func() (string, error) { return RenderHTML(s, opts) }},
		{MarkdownFile, func() (string, error) { return RenderMarkdown(s, opts), nil }},
		{JSONFile, func() (string, error) { return RenderJSON(s) }},
	}

	for _, r := range renderers {
		path := filepath.Join(dir, r.name)
		content, err := r.render()
		if err == nil {
			err = os.WriteFile(path, []byte(content), 0644)
		}
		if err != nil {
			logging.Error("ReportGenerator", err, "Failed to generate %s", path)
			errs = append(errs, fmt.Errorf("failed to generate %s: %w", path, err))
			continue
		}
		logging.Info("ReportGenerator", "Generated report: %s", path)
		written = append(written, path)
	}
	return written, errs
}

func statusSymbol(s results.Status) string {
	switch s {
	case results.StatusPassed:
		return "✓"
	case results.StatusSkipped:
		return "⊘"
	default:
		return "✗"
	}
}

func bannerText(banner string) string {
	switch banner {
	case results.BannerPass:
		return "✓ PASS"
	case results.BannerPartial:
		return "⚠ PARTIAL"
	default:
		return "✗ FAIL"
	}
}
