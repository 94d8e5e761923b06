package app

import (
	"context"
	"fmt"
	"path/filepath"

	"specprobe/internal/config"
	"specprobe/internal/emitter"
	"specprobe/internal/mockdata"
	"specprobe/internal/openapi"
	"specprobe/internal/report"
	"specprobe/internal/results"
	"specprobe/internal/runner"
	"specprobe/internal/scenario"
	"specprobe/internal/stories"
	"specprobe/pkg/logging"
)

// GenerateOptions selects the inputs and artifacts of one generation.
type GenerateOptions struct {
	SpecPath    string
	StoriesPath string
	// SpecOnly skips the pytest modules
	SpecOnly bool
	// CodeOnly skips the specification document
	CodeOnly bool
}

// GenerateResult describes what a generation produced.
type GenerateResult struct {
	Spec              *openapi.Spec
	Stories           *stories.Model
	Cases             []scenario.TestCase
	Modules           []string
	SpecificationFile string
}

// Generate parses the inputs, synthesizes the enabled scenario categories and
// writes one pytest module per resource plus the specification document.
func (a *Application) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	defer logging.Timed("Pipeline", "generate")()

	spec, err := openapi.Parse(opts.SpecPath)
	if err != nil {
		return nil, err
	}
	logging.Info("Pipeline", "Loaded %d endpoints from %s", len(spec.Endpoints()), opts.SpecPath)

	var model *stories.Model
	if opts.StoriesPath != "" {
		model, err = stories.Parse(opts.StoriesPath)
		if err != nil {
			return nil, err
		}
		for _, d := range model.Diagnostics() {
			logging.Warn("Pipeline", "Story %s line %d is not a Given/When/Then criterion: %s", d.StoryID, d.Line, d.Text)
		}
		logging.Info("Pipeline", "Loaded %d user stories", len(model.Stories()))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gen := a.settings.Generator
	cases := scenario.Synthesize(spec, model, scenario.Options{
		Categories:       Categories(gen),
		PerformanceSLAMs: gen.PerformanceSLAMs,
	})
	result := &GenerateResult{Spec: spec, Stories: model, Cases: cases}

	if gen.GenerateCode && !opts.SpecOnly {
		for _, group := range emitter.GroupByResource(cases) {
			path := filepath.Join(a.settings.TestsDir(), emitter.ModuleFileName(group.Resource))
			code, err := emitter.EmitTestModule(group.Cases, a.moduleOptions(spec, opts.SpecPath, group.Resource))
			if err != nil {
				return nil, fmt.Errorf("failed to generate tests for %s: %w", group.Resource, err)
			}
			if err := emitter.WriteFile(path, code); err != nil {
				return nil, err
			}
			result.Modules = append(result.Modules, path)
		}
	}

	if gen.GenerateSpecs && !opts.CodeOnly {
		title := "Test Specification"
		if t := spec.Info().Title; t != "" {
			title = t + " Test Specification"
		}
		doc, err := emitter.EmitSpecificationDocument(cases, title)
		if err != nil {
			return nil, fmt.Errorf("failed to generate test specification: %w", err)
		}
		path := filepath.Join(a.settings.Output.Dir, emitter.SpecificationFile)
		if err := emitter.WriteFile(path, doc); err != nil {
			return nil, err
		}
		result.SpecificationFile = path
	}
	return result, nil
}

func (a *Application) moduleOptions(spec *openapi.Spec, specPath, resource string) emitter.ModuleOptions {
	title := fmt.Sprintf("Generated tests for %s", resource)
	if t := spec.Info().Title; t != "" {
		title = fmt.Sprintf("%s: generated tests for %s", t, resource)
	}
	return emitter.ModuleOptions{
		Title:          title,
		Source:         filepath.Base(specPath),
		BaseURL:        a.settings.API.BaseURL,
		TimeoutSeconds: a.settings.API.Timeout.Seconds(),
		AuthHeader:     a.settings.Auth.Header,
		AuthScheme:     a.settings.Auth.Scheme,
		AuthToken:      a.settings.Auth.Token,
	}
}

// Categories maps the generator toggles to a scenario category set.
func Categories(gen config.GeneratorConfig) scenario.CategorySet {
	set := scenario.CategorySet{}
	toggles := map[scenario.ScenarioType]bool{
		scenario.HappyPath:     gen.HappyPath,
		scenario.EdgeCase:      gen.EdgeCases,
		scenario.ErrorScenario: gen.ErrorScenarios,
		scenario.Security:      gen.SecurityTests,
		scenario.Integration:   gen.IntegrationTests,
		scenario.Performance:   gen.PerformanceTests,
	}
	for t, on := range toggles {
		if on {
			set[t] = true
		}
	}
	return set
}

// MockData writes sample payloads for every endpoint to
// <output>/mock_data.json and returns the path and endpoint count.
func (a *Application) MockData(specPath string) (string, int, error) {
	spec, err := openapi.Parse(specPath)
	if err != nil {
		return "", 0, err
	}
	payloads := mockdata.Payloads(spec)
	path := filepath.Join(a.settings.Output.Dir, mockdata.MockDataFile)
	if err := mockdata.WriteFile(path, payloads); err != nil {
		return "", 0, err
	}
	logging.Info("Pipeline", "Wrote mock data for %d endpoints to %s", payloads.Len(), path)
	return path, payloads.Len(), nil
}

// RunOptions selects which generated tests to execute.
type RunOptions struct {
	// Pattern is handed to the engine's -k filter
	Pattern string
	// File runs a single module relative to the tests directory
	File string
	// Reporter receives progress; nil is silent
	Reporter runner.Reporter
}

// RunTests executes the generated tests. Engine problems are recorded in the
// summary, never returned.
func (a *Application) RunTests(ctx context.Context, opts RunOptions) *results.Summary {
	r := a.services.NewRunner(opts.Reporter)
	switch {
	case opts.File != "":
		return r.RunFile(ctx, opts.File)
	case opts.Pattern != "":
		return r.RunByPattern(ctx, opts.Pattern)
	default:
		return r.RunAll(ctx, "")
	}
}

// WriteReports renders the HTML, Markdown and JSON reports into the output
// directory, best effort.
func (a *Application) WriteReports(summary *results.Summary, title string) ([]string, []error) {
	return report.WriteAll(a.settings.Output.Dir, summary, report.Options{Title: title, Now: a.now})
}
