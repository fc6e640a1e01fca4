package todo

import (
	"errors"
	"strings"
)

var (
	ErrEmptyText     = errors.New("task text is empty")
	ErrDuplicateText = errors.New("task with the same text already exists")
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidOrder  = errors.New("order is not a permutation of the current rows")
)

// Task is a persisted to-do entry. Identity is the exact Text value,
// including any embedded markup.
type Task struct {
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Key returns the plain-text join key of the task.
func (t Task) Key() string {
	return PlainText(t.Text)
}

// TemplateTask is an externally supplied task definition that may carry
// amount placeholders.
type TemplateTask struct {
	Text string `json:"text" yaml:"text"`
}

// Template is the seed document: {"tasks": [{"text": "..."}]}.
type Template struct {
	Tasks []TemplateTask `json:"tasks" yaml:"tasks"`
}

// NormalizeText trims user input. An empty result means the input must be rejected.
func NormalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// CloneTasks returns a copy of tasks that never aliases the input.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
