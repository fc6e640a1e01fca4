package watch_test

import (
	"testing"

	"github.com/felixgeelhaar/taskboard/internal/infrastructure/watch"
)

func TestTemplateFilter(t *testing.T) {
	f := watch.TemplateFilter("/srv/seed/tasks.json")

	tests := []struct {
		path  string
		match bool
	}{
		{"/srv/seed/tasks.json", true},
		{"tasks.json", true},
		{"/srv/seed/other.json", false},
		{"/srv/seed/.tasks.json.swp", false},
		{"/srv/seed/tasks.json~", false},
		{"/srv/seed/.#tasks.json", false},
	}

	for _, tt := range tests {
		if got := f.Matches(tt.path); got != tt.match {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.match)
		}
	}
}

func TestPatternFilter_ExcludeWins(t *testing.T) {
	f := watch.NewPatternFilter([]string{"*.json"}, []string{"removed*.json"})

	tests := []struct {
		path  string
		match bool
	}{
		{"tasks.json", true},
		{"removedTasks.json", false},
		{"tasks.yaml", false},
	}

	for _, tt := range tests {
		if got := f.Matches(tt.path); got != tt.match {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.match)
		}
	}
}

func TestPatternFilter_EmptyIncludeAdmitsAll(t *testing.T) {
	f := watch.NewPatternFilter(nil, []string{"*.tmp"})
	if !f.Matches("anything.json") {
		t.Error("expected match with no include patterns")
	}
	if f.Matches("scratch.tmp") {
		t.Error("expected excluded path to be rejected")
	}
}
