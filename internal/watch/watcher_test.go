package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) onChange(changed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, changed)
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config{OnChange: func([]string) {}})
	assert.Error(t, err)

	_, err = New(Config{Files: []string{"openapi.yaml"}})
	assert.Error(t, err)

	w, err := New(Config{Files: []string{"a/openapi.yaml", "a/stories.md"}, OnChange: func([]string) {}})
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounceInterval, w.config.Debounce)
	assert.Len(t, w.dirs, 1)
	assert.Len(t, w.files, 2)
}

func TestDebouncedChange(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, "openapi.yaml")
	other := filepath.Join(dir, "notes.txt")
	writeFile(t, spec, "v1")
	writeFile(t, other, "x")

	rec := &recorder{}
	w, err := New(Config{Files: []string{spec}, Debounce: 50 * time.Millisecond, OnChange: rec.onChange})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	writeFile(t, other, "y")
	writeFile(t, spec, "v2")
	writeFile(t, spec, "v3")

	require.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, 5*time.Second, 10*time.Millisecond)
	calls := rec.snapshot()
	abs, _ := filepath.Abs(spec)
	assert.Equal(t, []string{abs}, calls[0])
}

func TestStartStop(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, "openapi.yaml")
	writeFile(t, spec, "v1")

	w, err := New(Config{Files: []string{spec}, OnChange: func([]string) {}})
	require.NoError(t, err)

	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())
	require.NoError(t, w.Start())

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
	require.NoError(t, w.Stop())
}

func TestCheckForChanges(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, "openapi.yaml")
	writeFile(t, spec, "v1")

	w, err := New(Config{Files: []string{spec}, OnChange: func([]string) {}})
	require.NoError(t, err)

	assert.Empty(t, w.checkForChanges())
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(spec, later, later))

	abs, _ := filepath.Abs(spec)
	assert.Equal(t, []string{abs}, w.checkForChanges())
	assert.Empty(t, w.checkForChanges())
}

func TestRunStopsWithContext(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, "openapi.yaml")
	writeFile(t, spec, "v1")

	w, err := New(Config{Files: []string{spec}, OnChange: func([]string) {}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, w.IsRunning, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.False(t, w.IsRunning())
}
