package todo

import (
	"fmt"

	"github.com/google/uuid"
)

// Row is a task paired with a stable key. Keys live only in memory; they let
// handlers address a row without capturing its position or text.
type Row struct {
	Key string `json:"key"`
	Task
}

// List is the ordered task list owned by a controller. Rendering is a
// projection of Rows. A List is not safe for concurrent use.
type List struct {
	rows  []Row
	newID func() string
}

// NewList creates a list holding tasks in order.
func NewList(tasks []Task) *List {
	l := &List{newID: uuid.NewString}
	l.Replace(tasks)
	return l
}

// Replace swaps the whole content for tasks. Keys of rows whose text survives
// are kept so open views stay addressable. Later duplicates of a text are
// dropped.
func (l *List) Replace(tasks []Task) {
	old := make(map[string]string, len(l.rows))
	for _, r := range l.rows {
		old[r.Text] = r.Key
	}

	seen := make(map[string]bool, len(tasks))
	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.Text] {
			continue
		}
		seen[t.Text] = true
		key, ok := old[t.Text]
		if !ok {
			key = l.newID()
		}
		rows = append(rows, Row{Key: key, Task: t})
	}
	l.rows = rows
}

// Clone returns an independent copy that keeps row keys.
func (l *List) Clone() *List {
	return &List{rows: l.Rows(), newID: l.newID}
}

// Len returns the number of rows.
func (l *List) Len() int { return len(l.rows) }

// Rows returns a copy of the rows in display order.
func (l *List) Rows() []Row {
	out := make([]Row, len(l.rows))
	copy(out, l.rows)
	return out
}

// Tasks returns the canonical task sequence.
func (l *List) Tasks() []Task {
	out := make([]Task, len(l.rows))
	for i, r := range l.rows {
		out[i] = r.Task
	}
	return out
}

// Keys returns row keys in display order.
func (l *List) Keys() []string {
	out := make([]string, len(l.rows))
	for i, r := range l.rows {
		out[i] = r.Key
	}
	return out
}

// Find returns the row with key.
func (l *List) Find(key string) (Row, bool) {
	if i := l.index(key); i >= 0 {
		return l.rows[i], true
	}
	return Row{}, false
}

// IndexOfText returns the position of the row whose text equals text exactly,
// or -1.
func (l *List) IndexOfText(text string) int {
	for i, r := range l.rows {
		if r.Text == text {
			return i
		}
	}
	return -1
}

// Add appends a new incomplete task.
func (l *List) Add(text string) (Row, error) {
	text, err := NormalizeText(text)
	if err != nil {
		return Row{}, err
	}
	if l.IndexOfText(text) >= 0 {
		return Row{}, fmt.Errorf("%w: %q", ErrDuplicateText, text)
	}
	row := Row{Key: l.newID(), Task: Task{Text: text}}
	l.rows = append(l.rows, row)
	return row, nil
}

// Remove deletes the row with key and returns its task.
func (l *List) Remove(key string) (Task, error) {
	i := l.index(key)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, key)
	}
	t := l.rows[i].Task
	l.rows = append(l.rows[:i], l.rows[i+1:]...)
	return t, nil
}

// Edit replaces the text of the row with key, keeping its completion state
// and position. It returns the previous task.
func (l *List) Edit(key, text string) (Task, error) {
	text, err := NormalizeText(text)
	if err != nil {
		return Task{}, err
	}
	i := l.index(key)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, key)
	}
	if j := l.IndexOfText(text); j >= 0 && j != i {
		return Task{}, fmt.Errorf("%w: %q", ErrDuplicateText, text)
	}
	prev := l.rows[i].Task
	l.rows[i].Text = text
	return prev, nil
}

// SetCompleted sets the completion flag of the row with key.
func (l *List) SetCompleted(key string, completed bool) error {
	i := l.index(key)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, key)
	}
	l.rows[i].Completed = completed
	return nil
}

// Toggle flips the completion flag of the row with key and returns the new value.
func (l *List) Toggle(key string) (bool, error) {
	i := l.index(key)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrTaskNotFound, key)
	}
	l.rows[i].Completed = !l.rows[i].Completed
	return l.rows[i].Completed, nil
}

// Reorder arranges rows in the order given by keys, which must be a
// permutation of the current keys.
func (l *List) Reorder(keys []string) error {
	if len(keys) != len(l.rows) {
		return fmt.Errorf("%w: got %d keys for %d rows", ErrInvalidOrder, len(keys), len(l.rows))
	}
	byKey := make(map[string]Row, len(l.rows))
	for _, r := range l.rows {
		byKey[r.Key] = r
	}
	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		r, ok := byKey[k]
		if !ok {
			return fmt.Errorf("%w: unknown or repeated key %s", ErrInvalidOrder, k)
		}
		delete(byKey, k)
		rows = append(rows, r)
	}
	l.rows = rows
	return nil
}

// Move relocates the row at index from to index to. Out-of-range targets clamp
// to the ends of the list.
func (l *List) Move(from, to int) error {
	if from < 0 || from >= len(l.rows) {
		return fmt.Errorf("%w: index %d", ErrTaskNotFound, from)
	}
	if to < 0 {
		to = 0
	}
	if to >= len(l.rows) {
		to = len(l.rows) - 1
	}
	if from == to {
		return nil
	}
	r := l.rows[from]
	rows := append(l.rows[:from:from], l.rows[from+1:]...)
	rows = append(rows[:to], append([]Row{r}, rows[to:]...)...)
	l.rows = rows
	return nil
}

func (l *List) index(key string) int {
	for i, r := range l.rows {
		if r.Key == key {
			return i
		}
	}
	return -1
}
