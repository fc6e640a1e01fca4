package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

// DefaultDebounce is the quiet window before a changed template is reloaded.
const DefaultDebounce = 300 * time.Millisecond

// Reconciler re-applies the template to the task list.
type Reconciler interface {
	Reconcile(ctx context.Context) ([]todo.Row, error)
}

// Change is one relevant filesystem event on the template file.
type Change struct {
	Path string
	Op   string // "create", "write", "remove", "rename"
}

// TemplateWatcher reconciles the task list whenever the template file is
// written. The parent directory is watched so atomic saves that replace the
// file are seen too.
type TemplateWatcher struct {
	path       string
	watcher    *fsnotify.Watcher
	filter     *PatternFilter
	debounce   time.Duration
	reconciler Reconciler
	logger     *slog.Logger
	onReload   func(Change, error)
	reloads    atomic.Int64
}

// Option configures a TemplateWatcher.
type Option func(*TemplateWatcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *TemplateWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *TemplateWatcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithReloadHook is called after every reload attempt.
func WithReloadHook(fn func(Change, error)) Option {
	return func(w *TemplateWatcher) { w.onReload = fn }
}

// NewTemplateWatcher creates a watcher for the template at path.
func NewTemplateWatcher(path string, reconciler Reconciler, opts ...Option) (*TemplateWatcher, error) {
	if path == "" {
		return nil, errors.New("template path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve template path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &TemplateWatcher{
		path:       abs,
		watcher:    fw,
		filter:     TemplateFilter(abs),
		debounce:   DefaultDebounce,
		reconciler: reconciler,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute template path being watched.
func (w *TemplateWatcher) Path() string { return w.path }

// Reloads returns the number of completed reload attempts.
func (w *TemplateWatcher) Reloads() int64 { return w.reloads.Load() }

// Run starts the event loop. It blocks until ctx is cancelled.
func (w *TemplateWatcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	debouncer := NewDebouncer(w.debounce, func(c Change) {
		w.reload(ctx, c)
	})
	defer debouncer.Stop()

	w.logger.Info("watching template", "path", w.path, "debounce", w.debounce)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			op := opName(event.Op)
			if op == "" || !w.filter.Matches(event.Name) {
				continue
			}
			if op == "remove" || op == "rename" {
				// The file is gone for now; a following create brings it back.
				w.logger.Debug("template moved away", "path", event.Name, "op", op)
				continue
			}
			debouncer.Trigger(Change{Path: event.Name, Op: op})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *TemplateWatcher) reload(ctx context.Context, c Change) {
	if ctx.Err() != nil {
		return
	}
	rows, err := w.reconciler.Reconcile(ctx)
	w.reloads.Add(1)
	if err != nil {
		w.logger.Warn("template reload failed", "path", c.Path, "error", err)
	} else {
		w.logger.Info("template reloaded", "path", c.Path, "op", c.Op, "tasks", len(rows))
	}
	if w.onReload != nil {
		w.onReload(c, err)
	}
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
