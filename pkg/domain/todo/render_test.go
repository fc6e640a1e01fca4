package todo_test

import (
	"reflect"
	"testing"

	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

func TestRenderText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		amount int
		want   string
	}{
		{"multiplier", "Pay {{amount*2}} baht", 50, "Pay 100 baht"},
		{"bare", "Pay {{amount}} baht", 50, "Pay 50 baht"},
		{"both", "{{amount}} then {{amount*3}}", 10, "10 then 30"},
		{"zero amount", "Pay {{amount*5}}", 0, "Pay 0"},
		{"no placeholder", "Buy milk", 50, "Buy milk"},
		{"spaces inside braces", "Pay {{ amount * 4 }}", 5, "Pay 20"},
		{"only first bare", "{{amount}} and {{amount}}", 7, "7 and {{amount}}"},
		{"only first multiplier", "{{amount*2}} and {{amount*2}}", 7, "14 and {{amount*2}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := todo.PlainText(todo.RenderText(tt.text, tt.amount))
			if got != tt.want {
				t.Errorf("plain text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderText_WrapsAmount(t *testing.T) {
	got := todo.RenderText("Pay {{amount}}", 50)
	want := `Pay <span class="premium-amount">50</span>`
	if got != want {
		t.Fatalf("RenderText = %q, want %q", got, want)
	}
	if !todo.HasMarkup(got) {
		t.Error("expected rendered text to carry markup")
	}
	if todo.HasPlaceholder(got) {
		t.Error("expected no placeholder left")
	}
}

func TestPlainText(t *testing.T) {
	tests := map[string]string{
		"plain":                                         "plain",
		`Pay <span class="premium-amount">5</span> now`: "Pay 5 now",
		"fix a<b bug":                                   "fix a<b bug",
		"x < y & z":                                     "x < y & z",
		"<b>bold</b> text":                              "<b>bold</b> text",
		"Tom &amp; Jerry":                               "Tom &amp; Jerry",
		`<span class="x">1</span>0`:                     `<span class="x">1</span>0`,
		"":                                              "",
	}
	for in, want := range tests {
		if got := todo.PlainText(in); got != want {
			t.Errorf("PlainText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSegments(t *testing.T) {
	text := todo.RenderText("a<b {{amount}} & {{amount*2}}", 4)
	want := []todo.Segment{
		{Text: "a<b "},
		{Text: "4", Amount: true},
		{Text: " & "},
		{Text: "8", Amount: true},
	}
	if got := todo.Segments(text); !reflect.DeepEqual(got, want) {
		t.Fatalf("Segments(%q) = %+v, want %+v", text, got, want)
	}
	if todo.Segments("") != nil {
		t.Error("expected no segments for empty text")
	}
	if todo.HasMarkup("fix a<b bug") {
		t.Error("literal angle bracket is not markup")
	}
}
