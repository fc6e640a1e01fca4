package todo

import (
	"encoding/json"
	"sort"
)

// RemovalSet holds the plain-text keys of tasks the user explicitly deleted.
// A key in the set keeps the matching template entry from reappearing on
// reconciliation.
type RemovalSet map[string]struct{}

// NewRemovalSet builds a set from keys. Keys are normalized to plain text.
func NewRemovalSet(keys ...string) RemovalSet {
	s := make(RemovalSet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add records text as removed.
func (s RemovalSet) Add(text string) {
	s[PlainText(text)] = struct{}{}
}

// Delete forgets text. It is a no-op when text was never removed.
func (s RemovalSet) Delete(text string) {
	delete(s, PlainText(text))
}

// Has reports whether text (compared by plain-text key) was removed.
func (s RemovalSet) Has(text string) bool {
	_, ok := s[PlainText(text)]
	return ok
}

// Keys returns the removed keys in sorted order.
func (s RemovalSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of the set.
func (s RemovalSet) Clone() RemovalSet {
	out := make(RemovalSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array of keys.
func (s RemovalSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

// UnmarshalJSON decodes an array of keys.
func (s *RemovalSet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*s = NewRemovalSet(keys...)
	return nil
}
