package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

type countingReconciler struct {
	calls atomic.Int32
	err   error
}

func (r *countingReconciler) Reconcile(context.Context) ([]todo.Row, error) {
	r.calls.Add(1)
	return nil, r.err
}

func startWatcher(t *testing.T, path string, r Reconciler, opts ...Option) context.CancelFunc {
	t.Helper()
	opts = append([]Option{WithDebounce(30 * time.Millisecond)}, opts...)
	w, err := NewTemplateWatcher(path, r, opts...)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()
	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestTemplateWatcher_ReconcilesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte(`{"tasks":[]}`), 0600); err != nil {
		t.Fatal(err)
	}

	r := &countingReconciler{}
	cancel := startWatcher(t, path, r)
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"tasks":[{"text":"a"}]}`), 0600); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return r.calls.Load() >= 1 })
	time.Sleep(100 * time.Millisecond)
	if got := r.calls.Load(); got != 1 {
		t.Errorf("expected a burst of writes to reload once, got %d", got)
	}
}

func TestTemplateWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}

	r := &countingReconciler{}
	cancel := startWatcher(t, path, r)
	defer cancel()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if got := r.calls.Load(); got != 0 {
		t.Errorf("expected no reload for unrelated file, got %d", got)
	}
}

func TestTemplateWatcher_ReportsReloadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}

	failure := errors.New("template unavailable")
	r := &countingReconciler{err: failure}
	var reported atomic.Value
	cancel := startWatcher(t, path, r, WithReloadHook(func(_ Change, err error) {
		reported.Store(err)
	}))
	defer cancel()

	if err := os.WriteFile(path, []byte(`{"tasks":[]}`), 0600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return reported.Load() != nil })
	if err, _ := reported.Load().(error); !errors.Is(err, failure) {
		t.Errorf("expected reload error to be reported, got %v", err)
	}
}

func TestTemplateWatcher_ContextCancellation(t *testing.T) {
	dir := t.TempDir()
	w, err := NewTemplateWatcher(filepath.Join(dir, "tasks.json"), &countingReconciler{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop after context cancellation")
	}
}

func TestNewTemplateWatcher_EmptyPath(t *testing.T) {
	if _, err := NewTemplateWatcher("", &countingReconciler{}); err == nil {
		t.Error("expected error for empty path")
	}
}
