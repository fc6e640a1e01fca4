package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	draggingStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	amountStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// styledText renders task text for the terminal, highlighting rendered
// amounts. Other text is shown as is.
func styledText(text string) string {
	if !todo.HasMarkup(text) {
		return text
	}
	var b strings.Builder
	for _, seg := range todo.Segments(text) {
		if seg.Amount {
			b.WriteString(amountStyle.Render(seg.Text))
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}
