package reorder_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/taskboard/pkg/domain/reorder"
)

// rowsAt builds rows of height 100 whose midpoints are 100, 200, 300, ...
func rowsAt(keys ...string) []reorder.Row {
	rows := make([]reorder.Row, len(keys))
	for i, k := range keys {
		rows[i] = reorder.Row{Key: k, Top: 50 + float64(i)*100, Height: 100}
	}
	return rows
}

func TestInsertionPoint(t *testing.T) {
	rows := rowsAt("A", "B", "C")

	tests := []struct {
		name    string
		dragged string
		y       float64
		want    string
	}{
		{"between A and B", "C", 150, "B"},
		{"above everything", "C", -1000, "A"},
		{"below everything", "A", 1000, ""},
		{"exactly on a midpoint", "A", 200, "C"},
		{"skips dragged row", "B", 150, "C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reorder.InsertionPoint(rows, tt.dragged, tt.y); got != tt.want {
				t.Errorf("InsertionPoint = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLayout_DerivesTopsFromOrder(t *testing.T) {
	l, err := reorder.NewLayout([]reorder.Row{
		{Key: "B", Top: 60, Height: 20},
		{Key: "A", Top: 10, Height: 50},
	})
	if err != nil {
		t.Fatalf("NewLayout failed: %v", err)
	}
	if got := l.Keys(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("keys = %v", got)
	}
	if err := l.MoveBefore("B", "A"); err != nil {
		t.Fatalf("MoveBefore failed: %v", err)
	}
	want := []reorder.Row{{Key: "B", Top: 10, Height: 20}, {Key: "A", Top: 30, Height: 50}}
	if got := l.Rows(); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
}

func TestLayout_Errors(t *testing.T) {
	if _, err := reorder.NewLayout([]reorder.Row{{Key: "A"}, {Key: "A"}}); !errors.Is(err, reorder.ErrUnknownRow) {
		t.Errorf("expected duplicate key error, got %v", err)
	}
	l := reorder.UniformLayout([]string{"A", "B"}, 1)
	if err := l.MoveBefore("Z", ""); !errors.Is(err, reorder.ErrUnknownRow) {
		t.Errorf("expected ErrUnknownRow, got %v", err)
	}
	if err := l.MoveBefore("A", "Z"); !errors.Is(err, reorder.ErrUnknownRow) {
		t.Errorf("expected ErrUnknownRow, got %v", err)
	}
	if err := l.Swap("A", "Z"); !errors.Is(err, reorder.ErrUnknownRow) {
		t.Errorf("expected ErrUnknownRow, got %v", err)
	}
}
