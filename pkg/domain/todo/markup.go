package todo

import (
	"regexp"
	"strings"
)

var amountMarker = regexp.MustCompile(`<span class="` + AmountClass + `">(\d+)</span>`)

// Segment is a run of task text. Amount marks the digits of a rendered amount.
type Segment struct {
	Text   string
	Amount bool
}

// Segments splits text around rendered amount markers. Everything outside a
// marker is literal text, including any other angle brackets or entities.
func Segments(text string) []Segment {
	locs := amountMarker.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		if text == "" {
			return nil
		}
		return []Segment{{Text: text}}
	}
	segs := make([]Segment, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			segs = append(segs, Segment{Text: text[last:loc[0]]})
		}
		segs = append(segs, Segment{Text: text[loc[2]:loc[3]], Amount: true})
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}

// PlainText replaces each rendered amount marker with its digits. The result
// is the join key used during reconciliation, so
// <span class="premium-amount">100</span> contributes only "100".
func PlainText(text string) string {
	if !strings.Contains(text, "<span") {
		return text
	}
	return amountMarker.ReplaceAllString(text, "$1")
}

// HasMarkup reports whether text carries a rendered amount marker.
func HasMarkup(text string) bool {
	return PlainText(text) != text
}
