package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"causeway-hq/causeway/pkg/dml/parser"
)

// FileSourceConfig contains configuration for the file source.
type FileSourceConfig struct {
	// Dir is the model directory to read and watch.
	Dir string

	// DebounceInterval is the quiet period after a change before
	// onChange fires, so an editor save burst triggers one rebuild.
	// Default: 100ms
	DebounceInterval time.Duration

	// Extensions lists the document extensions to read and watch.
	// Default: .yaml, .yml
	Extensions []string
}

// DefaultFileSourceConfig returns the default file source configuration.
func DefaultFileSourceConfig(dir string) *FileSourceConfig {
	return &FileSourceConfig{
		Dir:              dir,
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml"},
	}
}

// FileSource reads model documents from a directory and watches it for
// changes with fsnotify. The model is named after the directory.
type FileSource struct {
	config *FileSourceConfig
	logger *slog.Logger
}

// NewFileSource creates a file source over a model directory.
func NewFileSource(config *FileSourceConfig) *FileSource {
	return &FileSource{
		config: config,
		logger: slog.Default().With("component", "dml.source"),
	}
}

// Name returns the model name, the base name of the directory.
func (s *FileSource) Name() string {
	return filepath.Base(s.config.Dir)
}

// LoadDocuments reads every model document under the directory in
// lexical order, so rule set positions are stable across runs.
func (s *FileSource) LoadDocuments(ctx context.Context) ([]parser.Document, error) {
	entries, err := os.ReadDir(s.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("read model directory %q: %w", s.config.Dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if s.hasValidExtension(filepath.Ext(entry.Name())) {
			paths = append(paths, filepath.Join(s.config.Dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	docs := make([]parser.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read model document %q: %w", path, err)
		}
		docs = append(docs, parser.Document{Name: path, Data: data})
	}

	s.logger.Debug("loaded model documents", "dir", s.config.Dir, "count", len(docs))
	return docs, nil
}

// Watch watches the directory and invokes onChange after each debounced
// change burst. It blocks until the context is cancelled.
func (s *FileSource) Watch(ctx context.Context, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.config.Dir); err != nil {
		return fmt.Errorf("watch model directory %q: %w", s.config.Dir, err)
	}

	debounce := newDebouncer(s.config.DebounceInterval)
	defer debounce.Stop()

	s.logger.Info("model watcher started",
		"dir", s.config.Dir,
		"debounce_ms", s.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("model watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !s.shouldProcessEvent(event) {
				continue
			}
			s.logger.Debug("model document changed", "path", event.Name, "op", event.Op.String())

			debounce.Trigger(func() {
				if err := onChange(); err != nil {
					s.logger.Error("model reload failed", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			s.logger.Error("model watcher error", "error", err)
			// Keep watching despite errors.
		}
	}
}

func (s *FileSource) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return s.hasValidExtension(filepath.Ext(event.Name))
}

func (s *FileSource) hasValidExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, valid := range s.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// debouncer collapses rapid change events into one callback after a
// quiet period.
type debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

// Trigger schedules the callback, replacing any pending one.
func (d *debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
