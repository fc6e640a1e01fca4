// Package tui is the terminal front end of taskboard.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/taskboard/pkg/domain/reorder"
	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

// headerLines is the number of screen lines above the first row.
const headerLines = 3

// Service is the part of the list service the terminal UI drives.
type Service interface {
	Load(ctx context.Context) []todo.Row
	Snapshot() []todo.Row
	Amount() int
	Add(ctx context.Context, text string) (todo.Row, error)
	Edit(ctx context.Context, key, text string) (todo.Row, error)
	Remove(ctx context.Context, key string) (todo.Task, error)
	Toggle(ctx context.Context, key string) (todo.Row, error)
	SetAmount(ctx context.Context, raw string) (int, error)
	DeleteAll(ctx context.Context) error
	Reorder(ctx context.Context, keys []string) error
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeAmount
	modeConfirmClear
)

// Model is the bubbletea model of the task list.
type Model struct {
	ctx    context.Context
	svc    Service
	rows   []todo.Row
	amount int
	cursor int

	mode    mode
	input   textinput.Model
	editKey string

	// drag is set while a mouse drag is in progress.
	drag   *reorder.Engine
	status string
	err    error
}

// New creates a model and loads the list.
func New(ctx context.Context, svc Service) Model {
	in := textinput.New()
	in.CharLimit = 500
	in.Width = 50

	m := Model{ctx: ctx, svc: svc, input: in}
	m.rows = svc.Load(ctx)
	m.amount = svc.Amount()
	return m
}

// Run starts the program on the alternate screen with mouse support.
func Run(ctx context.Context, svc Service) error {
	p := tea.NewProgram(New(ctx, svc),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui run failed: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	case tea.MouseMsg:
		if m.mode == modeBrowse {
			return m.updateMouse(msg), nil
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	m.status = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case " ", "x":
		if row, ok := m.current(); ok {
			_, m.err = m.svc.Toggle(m.ctx, row.Key)
			m.refresh()
		}
	case "a":
		return m.prompt(modeAdd, "New task: ", "")
	case "e":
		if row, ok := m.current(); ok {
			m.editKey = row.Key
			return m.prompt(modeEdit, "Edit: ", row.Text)
		}
	case "$":
		return m.prompt(modeAmount, "Amount: ", fmt.Sprint(m.amount))
	case "d":
		if row, ok := m.current(); ok {
			if _, m.err = m.svc.Remove(m.ctx, row.Key); m.err == nil {
				m.status = "removed " + todo.PlainText(row.Text)
			}
			m.refresh()
		}
	case "D":
		m.mode = modeConfirmClear
	case "J", "shift+down":
		m.moveCursorRow(m.cursor + 1)
	case "K", "shift+up":
		m.moveCursorRow(m.cursor - 1)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeConfirmClear {
		if msg.String() == "y" {
			if m.err = m.svc.DeleteAll(m.ctx); m.err == nil {
				m.status = "all tasks deleted"
			}
			m.refresh()
		}
		m.mode = modeBrowse
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.submit(m.input.Value())
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(value string) {
	m.err = nil
	switch m.mode {
	case modeAdd:
		if _, m.err = m.svc.Add(m.ctx, value); m.err == nil {
			m.refresh()
			m.cursor = len(m.rows) - 1
		}
	case modeEdit:
		_, m.err = m.svc.Edit(m.ctx, m.editKey, value)
		m.refresh()
	case modeAmount:
		var amount int
		if amount, m.err = m.svc.SetAmount(m.ctx, value); m.err == nil {
			m.status = fmt.Sprintf("amount set to %d", amount)
		}
		m.refresh()
	}
}

func (m Model) prompt(md mode, label, value string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.Prompt = label
	m.input.SetValue(value)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

// moveCursorRow moves the row under the cursor to target by running a
// one-step pointer gesture over the list.
func (m *Model) moveCursorRow(target int) {
	row, ok := m.current()
	if !ok || target < 0 || target >= len(m.rows) {
		return
	}
	engine, err := m.newEngine(0)
	if err == nil {
		err = engine.Grab(row.Key)
	}
	if err == nil {
		err = engine.Over(pointerY(target, m.cursor))
	}
	if err == nil {
		err = engine.Release()
	}
	m.err = err
	m.refresh()
	if err == nil {
		m.cursor = target
	}
}

func (m Model) updateMouse(msg tea.MouseMsg) Model {
	line := msg.Y - headerLines
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || line < 0 || line >= len(m.rows) {
			return m
		}
		engine, err := m.newEngine(headerLines)
		if err == nil {
			err = engine.Grab(m.rows[line].Key)
		}
		if err != nil {
			m.err = err
			return m
		}
		m.drag = engine
		m.cursor = line
	case tea.MouseActionMotion:
		if m.drag == nil {
			return m
		}
		line = clamp(line, 0, len(m.rows)-1)
		if m.err = m.drag.Over(float64(headerLines) + pointerY(line, m.dragIndex())); m.err == nil {
			m.cursor = m.dragIndex()
		}
	case tea.MouseActionRelease:
		if m.drag == nil {
			return m
		}
		m.err = m.drag.Release()
		m.drag = nil
		m.refresh()
	}
	return m
}

// newEngine builds a pointer engine over the rows as laid out on screen,
// one line per row starting at top.
func (m Model) newEngine(top float64) (*reorder.Engine, error) {
	rows := make([]reorder.Row, len(m.rows))
	for i, r := range m.rows {
		rows[i] = reorder.Row{Key: r.Key, Top: top + float64(i), Height: 1}
	}
	layout, err := reorder.NewLayout(rows)
	if err != nil {
		return nil, err
	}
	return reorder.NewEngine(layout, reorder.Options{
		Family: reorder.FamilyPointer,
		OnOrderChange: func(order []string) error {
			return m.svc.Reorder(m.ctx, order)
		},
	})
}

// dragIndex is the current position of the dragged row.
func (m Model) dragIndex() int {
	st := m.drag.State()
	for i, k := range st.Order {
		if k == st.Active {
			return i
		}
	}
	return m.cursor
}

// pointerY returns a pointer offset, relative to the first row, that places a
// row currently at index from onto index target. Moving up aims above the
// target's midpoint, moving down below it.
func pointerY(target, from int) float64 {
	if target < from {
		return float64(target) + 0.25
	}
	return float64(target) + 0.75
}

func (m *Model) refresh() {
	m.rows = m.svc.Snapshot()
	m.amount = m.svc.Amount()
	m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
}

func (m Model) current() (todo.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return todo.Row{}, false
	}
	return m.rows[m.cursor], true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Premium amount: %s\n\n", amountStyle.Render(fmt.Sprint(m.amount)))

	order := m.rows
	active := ""
	if m.drag != nil {
		st := m.drag.State()
		active = st.Active
		order = reorderRows(m.rows, st.Order)
	}

	if len(order) == 0 {
		b.WriteString(helpStyle.Render("No tasks. Press a to add one."))
		b.WriteString("\n")
	}
	for i, row := range order {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		check := "[ ]"
		text := styledText(row.Text)
		if row.Completed {
			check = "[x]"
			text = doneStyle.Render(todo.PlainText(row.Text))
		}
		line := fmt.Sprintf("%s%s %s", cursor, check, text)
		if row.Key == active {
			line = draggingStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeAdd, modeEdit, modeAmount:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeConfirmClear:
		b.WriteString("Delete all tasks? (y/N)\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(helpStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("[j/k] move  [space] toggle  [a]dd  [e]dit  [d]elete  [$] amount  [J/K] reorder  [D] clear  [q] quit"))
	b.WriteString("\n")
	return b.String()
}

// reorderRows returns rows arranged by keys, for previewing a drag.
func reorderRows(rows []todo.Row, keys []string) []todo.Row {
	byKey := make(map[string]todo.Row, len(rows))
	for _, r := range rows {
		byKey[r.Key] = r
	}
	out := make([]todo.Row, 0, len(keys))
	for _, k := range keys {
		if r, ok := byKey[k]; ok {
			out = append(out, r)
		}
	}
	return out
}
