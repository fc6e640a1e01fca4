package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

func TestTaskRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(NewFileStore(t.TempDir()), nil)

	has, err := repo.HasTasks(ctx)
	if err != nil || has {
		t.Fatalf("HasTasks on empty store = %v, %v", has, err)
	}

	tasks := []todo.Task{{Text: "A", Completed: true}, {Text: `Pay <span class="premium-amount">5</span>`}}
	if err := repo.SaveTasks(ctx, tasks); err != nil {
		t.Fatalf("SaveTasks failed: %v", err)
	}
	got, err := repo.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("LoadTasks failed: %v", err)
	}
	if !reflect.DeepEqual(got, tasks) {
		t.Fatalf("got %v, want %v", got, tasks)
	}

	if err := repo.SaveRemoved(ctx, todo.NewRemovalSet("B", "C")); err != nil {
		t.Fatalf("SaveRemoved failed: %v", err)
	}
	removed, err := repo.LoadRemoved(ctx)
	if err != nil {
		t.Fatalf("LoadRemoved failed: %v", err)
	}
	if !reflect.DeepEqual(removed.Keys(), []string{"B", "C"}) {
		t.Fatalf("removed = %v", removed.Keys())
	}

	if err := repo.SaveAmount(ctx, 50); err != nil {
		t.Fatalf("SaveAmount failed: %v", err)
	}
	amount, err := repo.LoadAmount(ctx)
	if err != nil || amount != 50 {
		t.Fatalf("LoadAmount = %d, %v", amount, err)
	}
}

func TestTaskRepository_WireFormat(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewTaskRepository(store, nil)

	_ = repo.SaveTasks(ctx, []todo.Task{{Text: "A", Completed: true}})
	_ = repo.SaveRemoved(ctx, todo.NewRemovalSet("B"))
	_ = repo.SaveAmount(ctx, 7)

	want := map[string]string{
		KeyTasks:         `[{"text":"A","completed":true}]`,
		KeyRemovedTasks:  `["B"]`,
		KeyPremiumAmount: `7`,
	}
	for key, value := range want {
		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get %s failed: %v", key, err)
		}
		if string(got) != value {
			t.Errorf("%s = %s, want %s", key, got, value)
		}
	}
}

func TestTaskRepository_MalformedReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewTaskRepository(store, nil)

	_ = store.Set(ctx, KeyTasks, []byte(`{not json`))
	_ = store.Set(ctx, KeyRemovedTasks, []byte(`42`))
	_ = store.Set(ctx, KeyPremiumAmount, []byte(`-3`))

	tasks, err := repo.LoadTasks(ctx)
	if err != nil || len(tasks) != 0 {
		t.Errorf("LoadTasks = %v, %v", tasks, err)
	}
	has, err := repo.HasTasks(ctx)
	if err != nil || has {
		t.Errorf("HasTasks = %v, %v", has, err)
	}
	removed, err := repo.LoadRemoved(ctx)
	if err != nil || len(removed) != 0 {
		t.Errorf("LoadRemoved = %v, %v", removed, err)
	}
	amount, err := repo.LoadAmount(ctx)
	if err != nil || amount != 0 {
		t.Errorf("LoadAmount = %d, %v", amount, err)
	}
}

func TestTaskRepository_QuotedAmount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, KeyPremiumAmount, []byte(`"12"`))
	amount, err := NewTaskRepository(store, nil).LoadAmount(ctx)
	if err != nil || amount != 12 {
		t.Fatalf("LoadAmount = %d, %v", amount, err)
	}
}

func TestTaskRepository_ClearKeepsAmount(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(NewMemoryStore(), nil)
	_ = repo.SaveTasks(ctx, []todo.Task{{Text: "A"}})
	_ = repo.SaveRemoved(ctx, todo.NewRemovalSet("B"))
	_ = repo.SaveAmount(ctx, 9)

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if has, _ := repo.HasTasks(ctx); has {
		t.Error("tasks survived Clear")
	}
	if removed, _ := repo.LoadRemoved(ctx); len(removed) != 0 {
		t.Error("removals survived Clear")
	}
	if amount, _ := repo.LoadAmount(ctx); amount != 9 {
		t.Errorf("amount = %d, want 9", amount)
	}
}

func TestParseAmount(t *testing.T) {
	for _, raw := range []string{"", "abc", "-1", "1.5"} {
		if _, err := ParseAmount(raw); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q) expected ErrInvalidAmount, got %v", raw, err)
		}
	}
	if n, err := ParseAmount(" 42 "); err != nil || n != 42 {
		t.Errorf("ParseAmount = %d, %v", n, err)
	}
	if err := NewTaskRepository(NewMemoryStore(), nil).SaveAmount(context.Background(), -1); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("SaveAmount(-1) expected ErrInvalidAmount, got %v", err)
	}
}

func TestTaskRepository_EmptyListIsAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(NewMemoryStore(), nil)
	if err := repo.SaveTasks(ctx, []todo.Task{}); err != nil {
		t.Fatalf("SaveTasks failed: %v", err)
	}
	if has, err := repo.HasTasks(ctx); err != nil || has {
		t.Fatalf("HasTasks on empty list = %v, %v", has, err)
	}
	_ = repo.SaveTasks(ctx, []todo.Task{{Text: "A"}})
	if has, _ := repo.HasTasks(ctx); !has {
		t.Fatal("expected persisted tasks")
	}
}
