// Package wiring assembles taskboard's services from configuration.
package wiring

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/felixgeelhaar/taskboard/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskboard/internal/infrastructure/logging"
	"github.com/felixgeelhaar/taskboard/internal/infrastructure/webhook"
	"github.com/felixgeelhaar/taskboard/pkg/application"
	"github.com/felixgeelhaar/taskboard/pkg/domain/reorder"
	"github.com/felixgeelhaar/taskboard/pkg/infrastructure/seed"
	"github.com/felixgeelhaar/taskboard/pkg/storage"
)

// App bundles the services one taskboard process runs on.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Store     storage.Store
	Repo      *storage.TaskRepository
	Publisher *storage.InMemoryPublisher
	// EventLog is nil for the memory backend.
	EventLog *storage.FileEventLog
	Source   seed.Source
	List     *application.ListService
	// Notifier is nil when no webhooks are configured.
	Notifier *webhook.Notifier
}

// Build wires an App from cfg. Logs go to logOut.
func Build(ctx context.Context, cfg config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	family, err := reorder.ParseFamily(cfg.Drag.Family)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, storage.Options{
		Backend: cfg.Storage.Backend,
		Root:    cfg.Storage.Root,
		DSN:     cfg.Storage.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	repo := storage.NewTaskRepository(store, logger)
	publisher := storage.NewInMemoryPublisher(logger)

	var eventLog *storage.FileEventLog
	if cfg.Storage.Backend != storage.BackendMemory {
		eventLog = storage.NewFileEventLog(cfg.Storage.Root)
		publisher.Subscribe(eventLog.Handler())
	}

	var notifier *webhook.Notifier
	if hooks := cfg.Notify.Webhooks; len(hooks) > 0 {
		endpoints := make([]webhook.Endpoint, 0, len(hooks))
		for _, h := range hooks {
			endpoints = append(endpoints, webhook.Endpoint{
				Name:       h.Name,
				URL:        h.URL,
				Secret:     h.Secret,
				Events:     h.Events,
				MaxRetries: h.MaxRetries,
				RetryDelay: h.RetryDelay,
			})
		}
		deadLetters := webhook.NewDeadLetterStore(filepath.Join(cfg.Storage.Root, storage.Dir, webhook.DeadLetterFile))
		notifier = webhook.NewNotifier(endpoints, deadLetters, logger)
		publisher.Subscribe(notifier.Handler())
	}

	source := seed.NewSource(seed.SourceOptions{
		URL:      cfg.Template.URL,
		Path:     TemplatePath(cfg),
		Timeout:  cfg.Template.Timeout,
		Attempts: cfg.Template.Attempts,
	})

	list := application.NewListService(repo, source,
		application.WithPublisher(publisher),
		application.WithLogger(logger),
		application.WithDragOptions(application.DragOptions{
			Family:     family,
			TouchDelay: cfg.Drag.TouchDelay,
			Transition: cfg.Drag.Transition,
			RowHeight:  cfg.Drag.RowHeight,
		}),
	)

	logger.Debug("taskboard wired",
		"backend", cfg.Storage.Backend,
		"root", cfg.Storage.Root,
		"template", source.Describe(),
		"drag_family", family,
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Repo:      repo,
		Publisher: publisher,
		EventLog:  eventLog,
		Source:    source,
		List:      list,
		Notifier:  notifier,
	}, nil
}

// TemplatePath resolves the configured template file against the storage
// root. It is empty when no file template is configured or a URL wins.
func TemplatePath(cfg config.Config) string {
	p := cfg.Template.Path
	if p == "" || cfg.Template.URL != "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.Storage.Root, p)
}

// Close waits for pending webhook deliveries and releases the store.
func (a *App) Close() error {
	if a.Notifier != nil {
		a.Notifier.Wait()
	}
	return a.Store.Close()
}
