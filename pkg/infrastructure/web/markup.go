package web

import (
	"html/template"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

// taskHTML renders task text for the page. Only the amount marker span is
// kept as markup; everything else is escaped and shown literally.
func taskHTML(text string) template.HTML {
	var b strings.Builder
	for _, seg := range todo.Segments(text) {
		if seg.Amount {
			b.WriteString(`<span class="` + todo.AmountClass + `">`)
			b.WriteString(xhtml.EscapeString(seg.Text))
			b.WriteString("</span>")
			continue
		}
		b.WriteString(xhtml.EscapeString(seg.Text))
	}
	return template.HTML(b.String()) // #nosec G203 -- every segment is escaped
}
