package todo_test

import (
	"reflect"
	"testing"

	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

func template(texts ...string) todo.Template {
	tpl := todo.Template{}
	for _, text := range texts {
		tpl.Tasks = append(tpl.Tasks, todo.TemplateTask{Text: text})
	}
	return tpl
}

func TestReconciler_Idempotent(t *testing.T) {
	r := todo.NewReconciler()
	tpl := template("Buy milk", "Pay {{amount*2}} baht", "Call mom")
	persisted := []todo.Task{{Text: "Call mom", Completed: true}}
	removed := todo.NewRemovalSet("Buy milk")

	first := r.Reconcile(tpl, persisted, removed, 50)
	second := r.Reconcile(tpl, persisted, removed, 50)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reconcile not idempotent: %v vs %v", first, second)
	}

	// Feeding the output back in is stable too.
	third := r.Reconcile(tpl, first, removed, 50)
	if !reflect.DeepEqual(first, third) {
		t.Fatalf("reconcile over own output changed: %v vs %v", first, third)
	}
}

func TestReconciler_CompletionCarryOver(t *testing.T) {
	r := todo.NewReconciler()
	got := r.Reconcile(template("Buy milk"), []todo.Task{{Text: "Buy milk", Completed: true}}, nil, 0)
	want := []todo.Task{{Text: "Buy milk", Completed: true}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReconciler_CarryOverAcrossMarkup(t *testing.T) {
	r := todo.NewReconciler()
	tpl := template("Pay {{amount}} baht")

	first := r.Reconcile(tpl, nil, nil, 50)
	first[0].Completed = true

	// Same amount: the rendered span is joined by plain text.
	got := r.Reconcile(tpl, first, nil, 50)
	if !got[0].Completed {
		t.Fatalf("expected completion to survive, got %+v", got[0])
	}

	// New amount renders a different key, so completion resets.
	got = r.Reconcile(tpl, first, nil, 60)
	if got[0].Completed {
		t.Fatalf("expected completion reset for new amount, got %+v", got[0])
	}
	if todo.PlainText(got[0].Text) != "Pay 60 baht" {
		t.Fatalf("unexpected text %q", got[0].Text)
	}
}

func TestReconciler_RemovalExclusion(t *testing.T) {
	r := todo.NewReconciler()
	persisted := []todo.Task{{Text: "Buy milk", Completed: true}}
	got := r.Reconcile(template("Buy milk"), persisted, todo.NewRemovalSet("Buy milk"), 0)
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}

func TestReconciler_RemovalOfRenderedText(t *testing.T) {
	r := todo.NewReconciler()
	tpl := template("Pay {{amount*2}} baht", "Buy milk")
	rendered := r.Reconcile(tpl, nil, nil, 50)

	removed := todo.NewRemovalSet(rendered[0].Text)
	got := r.Reconcile(tpl, rendered, removed, 50)
	if len(got) != 1 || got[0].Text != "Buy milk" {
		t.Fatalf("expected only Buy milk, got %v", got)
	}
}

func TestReconciler_TemplateOrderAndFirstMatch(t *testing.T) {
	r := todo.NewReconciler()
	persisted := []todo.Task{
		{Text: "C", Completed: true},
		{Text: "A", Completed: true},
		{Text: "A", Completed: false},
	}
	got := r.Reconcile(template("A", "B", "C"), persisted, todo.NewRemovalSet(), 0)
	want := []todo.Task{{Text: "A", Completed: true}, {Text: "B"}, {Text: "C", Completed: true}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReconciler_DoesNotMutateInputs(t *testing.T) {
	r := todo.NewReconciler()
	persisted := []todo.Task{{Text: "A", Completed: true}}
	removed := todo.NewRemovalSet("B")
	_ = r.Reconcile(template("A", "B"), persisted, removed, 1)

	if len(removed) != 1 || !removed.Has("B") {
		t.Fatalf("removed set changed: %v", removed.Keys())
	}
	if !persisted[0].Completed || persisted[0].Text != "A" {
		t.Fatalf("persisted changed: %v", persisted)
	}
}
