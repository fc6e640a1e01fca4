package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/taskboard/pkg/domain/events"
	"github.com/google/uuid"
)

// EventsFile is the activity log kept next to the file store.
const EventsFile = "events.jsonl"

// FileEventLog appends events to a JSON Lines file.
type FileEventLog struct {
	mu       sync.RWMutex
	path     string
	basePath string
}

// NewFileEventLog creates a log under <root>/.taskboard. The directory is
// created on first write.
func NewFileEventLog(root string) *FileEventLog {
	base := filepath.Join(root, Dir)
	return &FileEventLog{path: filepath.Join(base, EventsFile), basePath: base}
}

// Append adds an event to the log.
func (l *FileEventLog) Append(event events.Event) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	if err := os.MkdirAll(l.basePath, 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close events file: %w", cerr)
		}
	}()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// LoadAll returns all events in the order they were appended. Unreadable
// lines are skipped.
func (l *FileEventLog) LoadAll() ([]events.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []events.Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer func() { _ = f.Close() }()

	result := []events.Event{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event events.Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		result = append(result, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return result, nil
}

// Recent returns at most limit of the newest events, oldest first.
func (l *FileEventLog) Recent(limit int) ([]events.Event, error) {
	all, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// Handler returns an events.Handler that appends to the log.
func (l *FileEventLog) Handler() events.Handler {
	return l.Append
}

// InMemoryPublisher is a simple in-process event publisher.
type InMemoryPublisher struct {
	mu       sync.RWMutex
	handlers []events.Handler
	logger   *slog.Logger
}

func NewInMemoryPublisher(logger *slog.Logger) *InMemoryPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryPublisher{
		handlers: make([]events.Handler, 0),
		logger:   logger,
	}
}

// Publish sends an event to all subscribers. A failing handler is logged and
// does not stop delivery to the others.
func (p *InMemoryPublisher) Publish(event events.Event) error {
	p.mu.RLock()
	handlers := make([]events.Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.RUnlock()

	for _, h := range handlers {
		if err := h(event); err != nil {
			p.logger.Warn("event handler failed", "type", event.Type, "error", err)
		}
	}
	return nil
}

// Subscribe registers a handler for events.
func (p *InMemoryPublisher) Subscribe(handler events.Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}
