// Package watch re-runs a callback when any of a fixed set of input files
// changes on disk.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"specprobe/pkg/logging"
)

const (
	// DefaultDebounceInterval is how long the watcher waits after the last
	// event before calling OnChange.
	DefaultDebounceInterval = 500 * time.Millisecond

	// DefaultPollInterval is used when fsnotify cannot watch a directory.
	DefaultPollInterval = 2 * time.Second
)

// Config holds configuration for the file watcher.
type Config struct {
	// Files are the inputs to watch. Their directories are watched so that
	// editors replacing a file by rename are noticed.
	Files []string

	// Debounce collapses bursts of events into one callback.
	Debounce time.Duration

	// PollInterval is the fallback polling interval.
	PollInterval time.Duration

	// OnChange receives the changed files, sorted.
	OnChange func(changed []string)
}

// Watcher monitors input files with fsnotify and falls back to polling
// modification times when fsnotify is unavailable.
type Watcher struct {
	mu sync.Mutex

	config  Config
	files   map[string]bool
	dirs    []string
	running bool
	stopCh  chan struct{}

	fsWatcher *fsnotify.Watcher

	// lastModTimes tracks the fallback poller's view of the files
	lastModTimes map[string]time.Time

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
	pending       map[string]bool
}

// New validates the configuration. Files are resolved to absolute paths.
func New(config Config) (*Watcher, error) {
	if len(config.Files) == 0 {
		return nil, errors.New("no files to watch")
	}
	if config.OnChange == nil {
		return nil, errors.New("no change handler")
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounceInterval
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}

	w := &Watcher{
		config:       config,
		files:        map[string]bool{},
		lastModTimes: map[string]time.Time{},
		pending:      map[string]bool{},
	}
	seen := map[string]bool{}
	for _, f := range config.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		w.files[abs] = true
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	sort.Strings(w.dirs)
	return w, nil
}

// Start begins watching. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	w.stopCh = make(chan struct{})
	w.running = true

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("Watcher", "fsnotify not available, falling back to polling: %v", err)
		go w.poll(w.stopCh)
		return nil
	}
	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			logging.Warn("Watcher", "Failed to watch %s, falling back to polling: %v", dir, err)
			watcher.Close()
			go w.poll(w.stopCh)
			return nil
		}
	}
	w.fsWatcher = watcher

	go w.processEvents(w.stopCh, watcher.Events, watcher.Errors)
	logging.Info("Watcher", "Watching %d file(s) for changes", len(w.files))
	return nil
}

func (w *Watcher) processEvents(stopCh <-chan struct{}, events <-chan fsnotify.Event, errs <-chan error) {
	for {
		select {
		case <-stopCh:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-errs:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name, err := filepath.Abs(event.Name)
	if err != nil || !w.files[name] {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	logging.Debug("Watcher", "%s: %s", event.Op, name)
	w.trigger(name)
}

// trigger records a change and restarts the debounce timer.
func (w *Watcher) trigger(name string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	w.pending[name] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.config.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.debounceMu.Lock()
	changed := make([]string, 0, len(w.pending))
	for name := range w.pending {
		changed = append(changed, name)
	}
	w.pending = map[string]bool{}
	w.debounceMu.Unlock()

	if len(changed) == 0 || !w.IsRunning() {
		return
	}
	sort.Strings(changed)
	w.config.OnChange(changed)
}

func (w *Watcher) poll(stopCh <-chan struct{}) {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.checkForChanges()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			for _, name := range w.checkForChanges() {
				w.trigger(name)
			}
		}
	}
}

// checkForChanges returns the files whose modification time moved forward
// since the previous check.
func (w *Watcher) checkForChanges() []string {
	var changed []string
	for name := range w.files {
		info, err := os.Stat(name)
		if err != nil {
			continue
		}
		mod := info.ModTime()
		if last, ok := w.lastModTimes[name]; ok && mod.After(last) {
			changed = append(changed, name)
		}
		w.lastModTimes[name] = mod
	}
	sort.Strings(changed)
	return changed
}

// Stop halts the watcher and drops any pending callback.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.pending = map[string]bool{}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("Watcher", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}
	logging.Info("Watcher", "Stopped watching")
	return nil
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Run starts the watcher and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}
