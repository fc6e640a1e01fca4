package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/felixgeelhaar/taskboard/pkg/domain/events"
	"github.com/felixgeelhaar/taskboard/pkg/domain/reorder"
	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
	"github.com/felixgeelhaar/taskboard/pkg/storage"
)

var (
	ErrEmptyText     = todo.ErrEmptyText
	ErrDuplicateText = todo.ErrDuplicateText
	ErrTaskNotFound  = todo.ErrTaskNotFound
	ErrInvalidOrder  = todo.ErrInvalidOrder
	ErrInvalidAmount = storage.ErrInvalidAmount

	// ErrTemplateUnavailable is returned by an explicit Reconcile when the
	// template cannot be fetched or parsed. State is left unchanged.
	ErrTemplateUnavailable = errors.New("template unavailable")
)

// TemplateSource supplies the template document.
type TemplateSource interface {
	Fetch(ctx context.Context) (todo.Template, error)
}

// DragOptions configures engines handed out by BeginDrag.
type DragOptions struct {
	Family     reorder.Family
	TouchDelay time.Duration
	Transition time.Duration
	// RowHeight is used when the caller has no measured geometry.
	RowHeight float64
	Scheduler reorder.Scheduler
}

// ListService owns the task list and serializes every read-modify-persist
// sequence on it. Reconciliations are serialized separately and fetch the
// template without holding the list lock.
type ListService struct {
	mu          sync.Mutex
	reconcileMu sync.Mutex
	repo       *storage.TaskRepository
	source     TemplateSource
	reconciler *todo.Reconciler
	publisher  events.Publisher
	logger     *slog.Logger
	drag       DragOptions

	loaded  bool
	list    *todo.List
	removed todo.RemovalSet
	amount  int
	// cleared counts DeleteAll calls; a fetch that straddles one is dropped.
	cleared uint64
}

// ListServiceOption customizes a ListService.
type ListServiceOption func(*ListService)

func WithPublisher(p events.Publisher) ListServiceOption {
	return func(s *ListService) { s.publisher = p }
}

func WithLogger(l *slog.Logger) ListServiceOption {
	return func(s *ListService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithDragOptions(d DragOptions) ListServiceOption {
	return func(s *ListService) { s.drag = d }
}

func NewListService(repo *storage.TaskRepository, source TemplateSource, opts ...ListServiceOption) *ListService {
	s := &ListService{
		repo:       repo,
		source:     source,
		reconciler: todo.NewReconciler(),
		logger:     slog.Default(),
		list:       todo.NewList(nil),
		removed:    todo.NewRemovalSet(),
		drag:       DragOptions{Family: reorder.FamilyPointer, RowHeight: 1},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads storage on first use. A persisted non-empty list is used as is;
// otherwise the template is reconciled and persisted. Later calls return the
// in-memory list. Template and storage failures degrade to whatever local
// state exists.
func (s *ListService) Load(ctx context.Context) []todo.Row {
	s.prepare(ctx)
	return s.Snapshot()
}

// Reconcile re-applies the template to the current list.
func (s *ListService) Reconcile(ctx context.Context) ([]todo.Row, error) {
	if seeded, err := s.seedOnce(ctx); seeded {
		return s.Snapshot(), err
	}
	err := s.reconcile(ctx)
	return s.Snapshot(), err
}

// SetAmount parses raw as a non-negative integer, persists it and reconciles
// the list with the new value. Invalid input leaves state untouched.
func (s *ListService) SetAmount(ctx context.Context, raw string) (int, error) {
	amount, err := storage.ParseAmount(raw)
	if err != nil {
		return 0, err
	}

	s.prepare(ctx)
	s.mu.Lock()
	previous := s.amount
	if err := s.repo.SaveAmount(ctx, amount); err != nil {
		s.mu.Unlock()
		return previous, fmt.Errorf("failed to save amount: %w", err)
	}
	s.amount = amount
	s.publish(events.New(events.AmountChanged, "", "").
		With("amount", strconv.Itoa(amount)).
		With("previous", strconv.Itoa(previous)))
	s.mu.Unlock()

	if err := s.reconcile(ctx); err != nil {
		// The amount is stored; the list is re-rendered on the next reconcile.
		s.logger.Warn("amount changed but template is unavailable", "amount", amount, "error", err)
	}
	return amount, nil
}

// Add appends a task. Adding a text the user removed earlier forgets that removal.
func (s *ListService) Add(ctx context.Context, text string) (todo.Row, error) {
	s.prepare(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.list.Clone()
	row, err := next.Add(text)
	if err != nil {
		return todo.Row{}, err
	}
	removed := s.removed
	if removed.Has(row.Text) {
		removed = removed.Clone()
		removed.Delete(row.Text)
	}
	if err := s.commit(ctx, next, removed); err != nil {
		return todo.Row{}, err
	}
	s.publish(events.New(events.TaskAdded, row.Key, row.Text))
	return row, nil
}

// Edit changes the text of a task, keeping completion and position.
func (s *ListService) Edit(ctx context.Context, key, text string) (todo.Row, error) {
	s.prepare(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.list.Clone()
	prev, err := next.Edit(key, text)
	if err != nil {
		return todo.Row{}, err
	}
	if err := s.commit(ctx, next, s.removed); err != nil {
		return todo.Row{}, err
	}
	row, _ := s.list.Find(key)
	s.publish(events.New(events.TaskEdited, key, row.Text).With("previous", prev.Text))
	return row, nil
}

// Remove deletes a task and records its plain-text key so reconciliation
// does not bring it back.
func (s *ListService) Remove(ctx context.Context, key string) (todo.Task, error) {
	s.prepare(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.list.Clone()
	task, err := next.Remove(key)
	if err != nil {
		return todo.Task{}, err
	}
	removed := s.removed.Clone()
	removed.Add(task.Text)
	if err := s.commit(ctx, next, removed); err != nil {
		return todo.Task{}, err
	}
	s.publish(events.New(events.TaskRemoved, key, task.Text))
	return task, nil
}

// Toggle flips the completion flag of a task.
func (s *ListService) Toggle(ctx context.Context, key string) (todo.Row, error) {
	s.prepare(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.list.Find(key)
	if !ok {
		return todo.Row{}, fmt.Errorf("%w: %s", ErrTaskNotFound, key)
	}
	return s.setCompletedLocked(ctx, key, !row.Completed)
}

// SetCompleted sets the completion flag of a task.
func (s *ListService) SetCompleted(ctx context.Context, key string, completed bool) (todo.Row, error) {
	s.prepare(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCompletedLocked(ctx, key, completed)
}

func (s *ListService) setCompletedLocked(ctx context.Context, key string, completed bool) (todo.Row, error) {
	next := s.list.Clone()
	if err := next.SetCompleted(key, completed); err != nil {
		return todo.Row{}, err
	}
	if err := s.commit(ctx, next, s.removed); err != nil {
		return todo.Row{}, err
	}
	row, _ := s.list.Find(key)
	s.publish(events.New(events.TaskToggled, key, row.Text).With("completed", strconv.FormatBool(completed)))
	return row, nil
}

// Reorder persists a new canonical order given as row keys. Re-applying the
// current order is a no-op write of the same sequence.
func (s *ListService) Reorder(ctx context.Context, keys []string) error {
	s.prepare(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.list.Clone()
	if err := next.Reorder(keys); err != nil {
		return err
	}
	if err := s.commit(ctx, next, s.removed); err != nil {
		return err
	}
	s.publish(events.New(events.ListReordered, "", ""))
	return nil
}

// Move relocates the task at index from to index to.
func (s *ListService) Move(ctx context.Context, from, to int) error {
	s.prepare(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.list.Clone()
	if err := next.Move(from, to); err != nil {
		return err
	}
	if err := s.commit(ctx, next, s.removed); err != nil {
		return err
	}
	s.publish(events.New(events.ListReordered, "", "").
		With("from", strconv.Itoa(from)).
		With("to", strconv.Itoa(to)))
	return nil
}

// DeleteAll clears the list and the removal set. The amount is kept.
func (s *ListService) DeleteAll(ctx context.Context) error {
	s.prepare(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	s.list = todo.NewList(nil)
	s.removed = todo.NewRemovalSet()
	s.cleared++
	s.publish(events.New(events.ListCleared, "", ""))
	return nil
}

// Snapshot returns the rows in display order.
func (s *ListService) Snapshot() []todo.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Rows()
}

// Amount returns the current premium amount.
func (s *ListService) Amount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amount
}

// Removed returns the recorded removal keys, sorted.
func (s *ListService) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removed.Keys()
}

// BeginDrag returns an engine over the current order whose gestures persist
// through Reorder. A nil layout stacks rows at the configured row height.
func (s *ListService) BeginDrag(ctx context.Context, layout *reorder.Layout) (*reorder.Engine, error) {
	return s.BeginDragWith(ctx, layout, nil)
}

// BeginDragWith is BeginDrag with a hook for timer-driven visual updates.
func (s *ListService) BeginDragWith(ctx context.Context, layout *reorder.Layout, onVisual func(reorder.State)) (*reorder.Engine, error) {
	s.prepare(ctx)
	s.mu.Lock()
	keys := s.list.Keys()
	s.mu.Unlock()

	if layout == nil {
		layout = reorder.UniformLayout(keys, s.drag.RowHeight)
	}
	return reorder.NewEngine(layout, reorder.Options{
		Family:         s.drag.Family,
		TouchDelay:     s.drag.TouchDelay,
		Transition:     s.drag.Transition,
		Scheduler:      s.drag.Scheduler,
		Logger:         s.logger,
		OnVisualChange: onVisual,
		OnOrderChange: func(order []string) error {
			return s.Reorder(ctx, order)
		},
	})
}

// prepare loads state from storage on first use and seeds the list from the
// template when nothing usable was persisted.
func (s *ListService) prepare(ctx context.Context) {
	if _, err := s.seedOnce(ctx); err != nil {
		s.logger.Warn("template unavailable, using local state", "error", err)
	}
}

// seedOnce reports whether this call performed the initial template seed.
func (s *ListService) seedOnce(ctx context.Context) (bool, error) {
	s.mu.Lock()
	seed := false
	if !s.loaded {
		seed = s.loadLocked(ctx)
	}
	s.mu.Unlock()
	if !seed {
		return false, nil
	}
	return true, s.reconcile(ctx)
}

// loadLocked reads removals, amount and tasks. It returns true when no task
// list was persisted and the caller should seed from the template.
func (s *ListService) loadLocked(ctx context.Context) bool {
	s.loaded = true

	removed, err := s.repo.LoadRemoved(ctx)
	if err != nil {
		s.logger.Warn("failed to load removed tasks", "error", err)
		removed = todo.NewRemovalSet()
	}
	amount, err := s.repo.LoadAmount(ctx)
	if err != nil {
		s.logger.Warn("failed to load amount", "error", err)
	}
	s.removed = removed
	s.amount = amount

	has, err := s.repo.HasTasks(ctx)
	if err != nil {
		s.logger.Warn("failed to check persisted tasks", "error", err)
	}
	if !has {
		s.list.Replace(nil)
		return true
	}
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		s.logger.Warn("failed to load tasks", "error", err)
	}
	s.list.Replace(tasks)
	s.logger.Debug("loaded persisted tasks", "count", len(tasks))
	return false
}

// reconcile fetches the template without holding mu, then merges it into the
// list as it stands when the fetch completes. On fetch failure nothing
// changes.
func (s *ListService) reconcile(ctx context.Context) error {
	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	if s.source == nil {
		return fmt.Errorf("%w: no template source", ErrTemplateUnavailable)
	}
	s.mu.Lock()
	cleared := s.cleared
	s.mu.Unlock()

	tpl, err := s.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared != cleared {
		s.logger.Debug("list cleared during template fetch, dropping result")
		return nil
	}
	tasks := s.reconciler.Reconcile(tpl, s.list.Tasks(), s.removed, s.amount)
	next := s.list.Clone()
	next.Replace(tasks)
	if err := s.commit(ctx, next, s.removed); err != nil {
		return err
	}
	s.logger.Info("reconciled task list", "tasks", next.Len(), "removed", len(s.removed), "amount", s.amount)
	s.publish(events.New(events.ListReconciled, "", "").With("count", strconv.Itoa(next.Len())))
	return nil
}

// commit persists next and removed, then adopts them.
func (s *ListService) commit(ctx context.Context, next *todo.List, removed todo.RemovalSet) error {
	if err := s.repo.SaveTasks(ctx, next.Tasks()); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	if !sameKeys(removed, s.removed) {
		if err := s.repo.SaveRemoved(ctx, removed); err != nil {
			return fmt.Errorf("failed to save removed tasks: %w", err)
		}
	}
	s.list = next
	s.removed = removed
	return nil
}

func (s *ListService) publish(e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(e); err != nil {
		s.logger.Warn("failed to publish event", "type", e.Type, "error", err)
	}
}

func sameKeys(a, b todo.RemovalSet) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
