package app

import (
	"context"
	"path/filepath"
	"sync"

	"specprobe/internal/mockserver"
	"specprobe/internal/openapi"
	"specprobe/internal/watch"
	"specprobe/pkg/logging"
)

// ServeMock serves the endpoints of the document at specPath until ctx is
// cancelled. An empty addr uses the configured mock address.
func (a *Application) ServeMock(ctx context.Context, specPath, addr string) error {
	spec, err := openapi.Parse(specPath)
	if err != nil {
		return err
	}
	srv, err := mockserver.New(spec, mockserver.Options{
		AuthHeader: a.settings.Auth.Header,
		AuthScheme: a.settings.Auth.Scheme,
	})
	if err != nil {
		return err
	}
	if addr == "" {
		addr = a.settings.Mock.Addr
	}
	logging.Info("CLI", "Mock server for %s. Press Ctrl+C to stop.", filepath.Base(specPath))
	return srv.Run(ctx, addr)
}

// Watch regenerates whenever the OpenAPI document or the stories file
// changes, after one initial generation. onGenerate is called with the
// outcome of every generation, including failed ones.
func (a *Application) Watch(ctx context.Context, opts GenerateOptions, onGenerate func(*GenerateResult, error)) error {
	var mu sync.Mutex
	regenerate := func() {
		mu.Lock()
		defer mu.Unlock()
		res, err := a.Generate(ctx, opts)
		if err != nil {
			logging.Error("Watch", err, "Generation failed")
		}
		if onGenerate != nil {
			onGenerate(res, err)
		}
	}

	files := []string{opts.SpecPath}
	if opts.StoriesPath != "" {
		files = append(files, opts.StoriesPath)
	}
	w, err := watch.New(watch.Config{
		Files: files,
		OnChange: func(changed []string) {
			logging.Info("Watch", "Change detected in %d file(s), regenerating", len(changed))
			regenerate()
		},
	})
	if err != nil {
		return err
	}

	regenerate()
	return w.Run(ctx)
}
