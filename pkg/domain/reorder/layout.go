package reorder

import (
	"fmt"
	"sort"
)

// Row is the vertical geometry of one visual row.
type Row struct {
	Key    string  `json:"key"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Mid returns the vertical midpoint of the row.
func (r Row) Mid() float64 {
	return r.Top + r.Height/2
}

// Layout is an ordered stack of rows. Tops are derived from order, starting at
// the layout origin, so moving a row shifts every row after it.
type Layout struct {
	origin  float64
	keys    []string
	heights map[string]float64
}

// NewLayout builds a layout from measured rows. Rows are ordered by Top and the
// first Top becomes the origin.
func NewLayout(rows []Row) (*Layout, error) {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })

	l := &Layout{heights: make(map[string]float64, len(rows))}
	if len(sorted) > 0 {
		l.origin = sorted[0].Top
	}
	for _, r := range sorted {
		if r.Key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrUnknownRow)
		}
		if _, dup := l.heights[r.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %s", ErrUnknownRow, r.Key)
		}
		if r.Height < 0 {
			return nil, fmt.Errorf("negative height for row %s", r.Key)
		}
		l.keys = append(l.keys, r.Key)
		l.heights[r.Key] = r.Height
	}
	return l, nil
}

// UniformLayout stacks keys at a fixed row height from origin 0.
func UniformLayout(keys []string, height float64) *Layout {
	l := &Layout{heights: make(map[string]float64, len(keys))}
	for _, k := range keys {
		if _, dup := l.heights[k]; dup {
			continue
		}
		l.keys = append(l.keys, k)
		l.heights[k] = height
	}
	return l
}

// Len returns the number of rows.
func (l *Layout) Len() int { return len(l.keys) }

// Keys returns row keys top to bottom.
func (l *Layout) Keys() []string {
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

// Rows returns the rows top to bottom with derived tops.
func (l *Layout) Rows() []Row {
	out := make([]Row, len(l.keys))
	top := l.origin
	for i, k := range l.keys {
		h := l.heights[k]
		out[i] = Row{Key: k, Top: top, Height: h}
		top += h
	}
	return out
}

// Row returns the row for key with its derived top.
func (l *Layout) Row(key string) (Row, bool) {
	top := l.origin
	for _, k := range l.keys {
		h := l.heights[k]
		if k == key {
			return Row{Key: k, Top: top, Height: h}, true
		}
		top += h
	}
	return Row{}, false
}

// Index returns the position of key, or -1.
func (l *Layout) Index(key string) int {
	for i, k := range l.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// MoveBefore moves key immediately before the row before. An empty before
// moves key to the end.
func (l *Layout) MoveBefore(key, before string) error {
	from := l.Index(key)
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRow, key)
	}
	if before == key {
		return nil
	}
	rest := make([]string, 0, len(l.keys))
	rest = append(rest, l.keys[:from]...)
	rest = append(rest, l.keys[from+1:]...)

	at := len(rest)
	if before != "" {
		at = -1
		for i, k := range rest {
			if k == before {
				at = i
				break
			}
		}
		if at < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownRow, before)
		}
	}

	keys := make([]string, 0, len(l.keys))
	keys = append(keys, rest[:at]...)
	keys = append(keys, key)
	keys = append(keys, rest[at:]...)
	l.keys = keys
	return nil
}

// Swap exchanges the positions of a and b.
func (l *Layout) Swap(a, b string) error {
	i, j := l.Index(a), l.Index(b)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRow, a)
	}
	if j < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRow, b)
	}
	l.keys[i], l.keys[j] = l.keys[j], l.keys[i]
	return nil
}

// InsertionPoint returns the key of the row the dragged row should be inserted
// before when the pointer is at y, or "" to append at the end.
//
// Among non-dragged rows it picks the one maximizing y - mid while that offset
// stays negative, which is the first row whose midpoint lies below y.
func InsertionPoint(rows []Row, dragged string, y float64) string {
	best := ""
	var bestOffset float64
	for _, r := range rows {
		if r.Key == dragged {
			continue
		}
		offset := y - r.Mid()
		if offset < 0 && (best == "" || offset > bestOffset) {
			best = r.Key
			bestOffset = offset
		}
	}
	return best
}
