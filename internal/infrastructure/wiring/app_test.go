package wiring

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskboard/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskboard/internal/infrastructure/webhook"
	"github.com/felixgeelhaar/taskboard/pkg/domain/events"
	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
	"github.com/felixgeelhaar/taskboard/pkg/storage"
)

func TestBuild_FileBackendWithTemplateFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "tasks.json"), []byte(`{"tasks":[{"text":"Pay {{amount}}"}]}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Storage.Root = root
	cfg.Template.Path = "tasks.json"

	var logs bytes.Buffer
	app, err := Build(context.Background(), cfg, &logs)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.Source.Describe() != "file:"+filepath.Join(root, "tasks.json") {
		t.Errorf("unexpected source %s", app.Source.Describe())
	}

	ctx := context.Background()
	rows := app.List.Load(ctx)
	if len(rows) != 1 || todo.PlainText(rows[0].Text) != "Pay 0" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if _, err := os.Stat(filepath.Join(root, storage.Dir, storage.KeyTasks)); err != nil {
		t.Errorf("expected tasks persisted on disk: %v", err)
	}

	if _, err := app.List.Add(ctx, "Walk"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if app.EventLog == nil {
		t.Fatal("expected event log for file backend")
	}
	recent, err := app.EventLog.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	found := false
	for _, e := range recent {
		if e.Type == events.TaskAdded {
			found = true
		}
	}
	if !found {
		t.Errorf("expected task.added in event log, got %+v", recent)
	}
}

func TestBuild_MemoryBackendHasNoEventLog(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = storage.BackendMemory
	app, err := Build(context.Background(), cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if app.EventLog != nil {
		t.Error("expected no event log for memory backend")
	}
	if app.Source.Describe() != "embedded" {
		t.Errorf("expected embedded template, got %s", app.Source.Describe())
	}
}

func TestBuild_InvalidSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = storage.BackendMemory
	cfg.Drag.Family = "stylus"
	if _, err := Build(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown drag family")
	}

	cfg = config.Default()
	cfg.Log.Level = "loud"
	if _, err := Build(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestTemplatePath(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Root = "/srv/tb"
	cfg.Template.Timeout = time.Second

	if got := TemplatePath(cfg); got != "" {
		t.Errorf("expected empty path, got %q", got)
	}
	cfg.Template.Path = "seed/tasks.json"
	if got := TemplatePath(cfg); got != filepath.Join("/srv/tb", "seed/tasks.json") {
		t.Errorf("unexpected relative resolution %q", got)
	}
	cfg.Template.Path = "/etc/tasks.json"
	if got := TemplatePath(cfg); got != "/etc/tasks.json" {
		t.Errorf("unexpected absolute path %q", got)
	}
	cfg.Template.URL = "https://example.com/tasks.json"
	if got := TemplatePath(cfg); got != "" {
		t.Errorf("expected URL to win, got %q", got)
	}
}

func TestBuild_WebhooksReceiveEvents(t *testing.T) {
	received := make(chan webhook.Payload, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhook.Payload
		_ = json.NewDecoder(r.Body).Decode(&p)
		received <- p
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Storage.Root = t.TempDir()
	cfg.Notify.Webhooks = []config.WebhookConfig{{
		Name:   "test",
		URL:    server.URL,
		Events: []string{string(events.TaskAdded)},
	}}

	app, err := Build(context.Background(), cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if app.Notifier == nil {
		t.Fatal("expected notifier")
	}

	ctx := context.Background()
	app.List.Load(ctx)
	if _, err := app.List.Add(ctx, "Walk"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(received))
	}
	if p := <-received; p.EventType != events.TaskAdded || p.Data.Text != "Walk" {
		t.Errorf("unexpected payload %+v", p)
	}
}
