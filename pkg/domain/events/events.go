// Package events defines the domain events emitted by task list mutations.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies what happened.
type Type string

const (
	TaskAdded      Type = "task.added"
	TaskEdited     Type = "task.edited"
	TaskRemoved    Type = "task.removed"
	TaskToggled    Type = "task.toggled"
	ListReordered  Type = "list.reordered"
	ListReconciled Type = "list.reconciled"
	ListCleared    Type = "list.cleared"
	AmountChanged  Type = "amount.changed"
)

// Event is a single recorded change to the task list.
type Event struct {
	ID        string            `json:"id"`
	Type      Type              `json:"type"`
	TaskKey   string            `json:"task_key,omitempty"`
	Text      string            `json:"text,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// New creates an event of type t stamped with a fresh id and the current time.
func New(t Type, taskKey, text string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		TaskKey:   taskKey,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// With returns a copy of e carrying an extra metadata pair.
func (e Event) With(key, value string) Event {
	md := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md[key] = value
	e.Metadata = md
	return e
}

// Handler processes published events.
type Handler func(event Event) error

// Publisher broadcasts events to subscribers.
type Publisher interface {
	// Publish sends an event to all registered subscribers.
	Publish(event Event) error

	// Subscribe registers a handler for events.
	Subscribe(handler Handler)
}
