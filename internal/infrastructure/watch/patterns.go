package watch

import (
	"path/filepath"
	"strings"
)

// editorArtifacts are scratch files editors write next to the file being saved.
var editorArtifacts = []string{"*.swp", "*.swx", "*~", ".#*", "*.tmp"}

// PatternFilter decides which paths in a watched directory are relevant.
type PatternFilter struct {
	Include []string
	Exclude []string
}

// NewPatternFilter creates a filter from include and exclude globs.
func NewPatternFilter(include, exclude []string) *PatternFilter {
	return &PatternFilter{Include: include, Exclude: exclude}
}

// TemplateFilter matches only the template file itself and ignores editor
// scratch files that share its directory.
func TemplateFilter(path string) *PatternFilter {
	return NewPatternFilter([]string{filepath.Base(path)}, editorArtifacts)
}

// Matches reports whether path passes the filter. Excludes win over includes;
// an empty include list admits everything not excluded.
func (f *PatternFilter) Matches(path string) bool {
	base := filepath.Base(path)
	if matchAny(f.Exclude, base, path) {
		return false
	}
	return len(f.Include) == 0 || matchAny(f.Include, base, path)
}

func matchAny(patterns []string, base, path string) bool {
	for _, pattern := range patterns {
		if strings.ContainsRune(pattern, filepath.Separator) {
			if ok, _ := filepath.Match(pattern, path); ok {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
