package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

// TaskRepository stores the task list, the removal set and the premium amount
// in a Store. Malformed stored values read as absent.
type TaskRepository struct {
	store  Store
	logger *slog.Logger
}

func NewTaskRepository(store Store, logger *slog.Logger) *TaskRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskRepository{store: store, logger: logger}
}

// HasTasks reports whether a non-empty task list is persisted. A malformed
// value or an empty list counts as absent, so the next load seeds again.
func (r *TaskRepository) HasTasks(ctx context.Context) (bool, error) {
	data, err := r.get(ctx, KeyTasks)
	if err != nil || data == nil {
		return false, err
	}
	var tasks []todo.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		r.malformed(KeyTasks, err)
		return false, nil
	}
	return len(tasks) > 0, nil
}

func (r *TaskRepository) LoadTasks(ctx context.Context) ([]todo.Task, error) {
	data, err := r.get(ctx, KeyTasks)
	if err != nil || data == nil {
		return []todo.Task{}, err
	}
	var tasks []todo.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		r.malformed(KeyTasks, err)
		return []todo.Task{}, nil
	}
	if tasks == nil {
		tasks = []todo.Task{}
	}
	return tasks, nil
}

func (r *TaskRepository) SaveTasks(ctx context.Context, tasks []todo.Task) error {
	if tasks == nil {
		tasks = []todo.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return r.store.Set(ctx, KeyTasks, data)
}

func (r *TaskRepository) LoadRemoved(ctx context.Context) (todo.RemovalSet, error) {
	data, err := r.get(ctx, KeyRemovedTasks)
	if err != nil || data == nil {
		return todo.NewRemovalSet(), err
	}
	var removed todo.RemovalSet
	if err := json.Unmarshal(data, &removed); err != nil {
		r.malformed(KeyRemovedTasks, err)
		return todo.NewRemovalSet(), nil
	}
	return removed, nil
}

func (r *TaskRepository) SaveRemoved(ctx context.Context, removed todo.RemovalSet) error {
	if removed == nil {
		removed = todo.NewRemovalSet()
	}
	data, err := json.Marshal(removed)
	if err != nil {
		return fmt.Errorf("failed to marshal removed tasks: %w", err)
	}
	return r.store.Set(ctx, KeyRemovedTasks, data)
}

func (r *TaskRepository) LoadAmount(ctx context.Context) (int, error) {
	data, err := r.get(ctx, KeyPremiumAmount)
	if err != nil || data == nil {
		return 0, err
	}
	amount, err := ParseAmount(string(data))
	if err != nil {
		// Older writers stored the amount as a JSON string.
		var quoted string
		if json.Unmarshal(data, &quoted) == nil {
			if a, qerr := ParseAmount(quoted); qerr == nil {
				return a, nil
			}
		}
		r.malformed(KeyPremiumAmount, err)
		return 0, nil
	}
	return amount, nil
}

func (r *TaskRepository) SaveAmount(ctx context.Context, amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	return r.store.Set(ctx, KeyPremiumAmount, []byte(strconv.Itoa(amount)))
}

// Clear forgets the task list and the removal set. The amount is kept.
func (r *TaskRepository) Clear(ctx context.Context) error {
	if err := r.store.Remove(ctx, KeyTasks); err != nil {
		return err
	}
	return r.store.Remove(ctx, KeyRemovedTasks)
}

// ErrInvalidAmount is returned for amounts that are not non-negative integers.
var ErrInvalidAmount = errors.New("amount must be a non-negative integer")

// ParseAmount parses a stringified non-negative integer.
func ParseAmount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return n, nil
}

// get returns nil data for an absent key.
func (r *TaskRepository) get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *TaskRepository) malformed(key string, err error) {
	r.logger.Warn("ignoring malformed stored value", "key", key, "error", err)
}
