package todo_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

func texts(l *todo.List) []string {
	var out []string
	for _, t := range l.Tasks() {
		out = append(out, t.Text)
	}
	return out
}

func TestList_AddRemove(t *testing.T) {
	l := todo.NewList([]todo.Task{{Text: "A", Completed: true}, {Text: "B"}})

	row, err := l.Add("  X  ")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if row.Text != "X" || row.Completed {
		t.Fatalf("unexpected row %+v", row)
	}
	if _, err := l.Remove(row.Key); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	want := []todo.Task{{Text: "A", Completed: true}, {Text: "B"}}
	if !reflect.DeepEqual(l.Tasks(), want) {
		t.Fatalf("got %v, want %v", l.Tasks(), want)
	}
	if l.IndexOfText("X") != -1 {
		t.Fatal("X still present")
	}
}

func TestList_AddRejects(t *testing.T) {
	l := todo.NewList([]todo.Task{{Text: "A"}})

	if _, err := l.Add("   "); !errors.Is(err, todo.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	if _, err := l.Add("A"); !errors.Is(err, todo.ErrDuplicateText) {
		t.Errorf("expected ErrDuplicateText, got %v", err)
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 row, got %d", l.Len())
	}
}

func TestList_EditKeepsPositionAndCompletion(t *testing.T) {
	l := todo.NewList([]todo.Task{{Text: "A"}, {Text: "B", Completed: true}, {Text: "C"}})
	key := l.Keys()[1]

	prev, err := l.Edit(key, "B2")
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if prev.Text != "B" {
		t.Errorf("expected previous text B, got %q", prev.Text)
	}
	row, _ := l.Find(key)
	if row.Text != "B2" || !row.Completed {
		t.Errorf("unexpected row %+v", row)
	}
	if _, err := l.Edit(key, "C"); !errors.Is(err, todo.ErrDuplicateText) {
		t.Errorf("expected ErrDuplicateText, got %v", err)
	}
	if _, err := l.Edit(key, "B2"); err != nil {
		t.Errorf("editing to own text should succeed: %v", err)
	}
	if _, err := l.Edit("missing", "Z"); !errors.Is(err, todo.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestList_Toggle(t *testing.T) {
	l := todo.NewList([]todo.Task{{Text: "A"}})
	key := l.Keys()[0]

	done, err := l.Toggle(key)
	if err != nil || !done {
		t.Fatalf("Toggle = %v, %v", done, err)
	}
	if err := l.SetCompleted(key, false); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}
	if l.Tasks()[0].Completed {
		t.Fatal("expected incomplete")
	}
}

func TestList_Reorder(t *testing.T) {
	l := todo.NewList([]todo.Task{{Text: "A"}, {Text: "B"}, {Text: "C"}})
	k := l.Keys()

	if err := l.Reorder([]string{k[1], k[2], k[0]}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	if got := texts(l); !reflect.DeepEqual(got, []string{"B", "C", "A"}) {
		t.Fatalf("got %v", got)
	}

	bad := [][]string{
		{k[0], k[1]},
		{k[0], k[0], k[1]},
		{k[0], k[1], "nope"},
	}
	for _, keys := range bad {
		if err := l.Reorder(keys); !errors.Is(err, todo.ErrInvalidOrder) {
			t.Errorf("Reorder(%v) expected ErrInvalidOrder, got %v", keys, err)
		}
	}
	if got := texts(l); !reflect.DeepEqual(got, []string{"B", "C", "A"}) {
		t.Fatalf("failed reorder changed list: %v", got)
	}
}

func TestList_Move(t *testing.T) {
	l := todo.NewList([]todo.Task{{Text: "A"}, {Text: "B"}, {Text: "C"}})

	if err := l.Move(0, 2); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if got := texts(l); !reflect.DeepEqual(got, []string{"B", "C", "A"}) {
		t.Fatalf("got %v", got)
	}
	if err := l.Move(2, -5); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if got := texts(l); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("got %v", got)
	}
	if err := l.Move(9, 0); !errors.Is(err, todo.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestList_ReplaceKeepsKeysAndDropsDuplicates(t *testing.T) {
	l := todo.NewList([]todo.Task{{Text: "A"}, {Text: "B"}})
	keyA := l.Keys()[0]

	l.Replace([]todo.Task{{Text: "C"}, {Text: "A", Completed: true}, {Text: "A"}})
	if l.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", l.Len())
	}
	row, ok := l.Find(keyA)
	if !ok || row.Text != "A" || !row.Completed {
		t.Fatalf("expected A to keep its key, got %+v ok=%v", row, ok)
	}
}

func TestRemovalSet(t *testing.T) {
	s := todo.NewRemovalSet(`Pay <span class="premium-amount">5</span>`)
	if !s.Has("Pay 5") {
		t.Fatal("expected plain-text key")
	}
	s.Delete("Pay 5")
	if len(s) != 0 {
		t.Fatalf("expected empty set, got %v", s.Keys())
	}
}

func TestList_CloneIsIndependent(t *testing.T) {
	l := todo.NewList([]todo.Task{{Text: "A"}, {Text: "B"}})
	c := l.Clone()
	if _, err := c.Add("C"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := c.SetCompleted(c.Keys()[0], true); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}
	if l.Len() != 2 || l.Tasks()[0].Completed {
		t.Fatalf("clone mutated original: %v", l.Tasks())
	}
	if !reflect.DeepEqual(l.Keys(), c.Keys()[:2]) {
		t.Fatal("clone changed keys")
	}
}
