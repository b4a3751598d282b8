// Package ui renders the todo list, interactively with Bubble Tea or as
// plain terminal output.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todos/internal/controller"
	"github.com/idilsaglam/todos/internal/model"
)

// Model is the Bubble Tea model around a controller.
type Model struct {
	ctl     *controller.Controller
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	cursor  int
	width   int
}

// NewModel builds the view for ctl with the creation input focused.
func NewModel(ctl *controller.Controller) *Model {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 200
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = accentStyle

	h := help.New()
	h.Styles.ShortKey = helpStyle
	h.Styles.ShortDesc = helpStyle

	m := &Model{
		ctl:     ctl,
		input:   ti,
		spinner: sp,
		help:    h,
		keys:    defaultKeyMap(),
		width:   80,
	}
	m.sync()
	return m
}

// Run starts the interactive list and blocks until the user quits.
func Run(ctx context.Context, ctl *controller.Controller) error {
	p := tea.NewProgram(NewModel(ctl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.ctl.Init(), m.spinner.Tick, textinput.Blink)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	ctlCmd := m.ctl.Update(msg)
	return m, tea.Batch(inputCmd, ctlCmd, m.sync())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if !m.ctl.Configured() {
		return nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Submit):
		cmd = m.ctl.SubmitNewTodo(m.input.Value())
	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			cmd = m.ctl.DeleteOne(t.ID)
		}
	case key.Matches(msg, m.keys.ClearCompleted):
		cmd = m.ctl.DeleteCompleted()
	case key.Matches(msg, m.keys.NextFilter):
		m.setFilter(m.ctl.Filter().Next(1))
	case key.Matches(msg, m.keys.PrevFilter):
		m.setFilter(m.ctl.Filter().Next(-1))
	case key.Matches(msg, m.keys.FilterAll):
		m.setFilter(model.FilterAll)
	case key.Matches(msg, m.keys.FilterActive):
		m.setFilter(model.FilterActive)
	case key.Matches(msg, m.keys.FilterCompleted):
		m.setFilter(model.FilterCompleted)
	case key.Matches(msg, m.keys.DismissError):
		m.ctl.DismissError()
	default:
		if m.ctl.IsAdding() {
			return nil
		}
		m.input, cmd = m.input.Update(msg)
		m.ctl.SetNewTodoTitle(m.input.Value())
	}
	return tea.Batch(cmd, m.sync())
}

func (m *Model) setFilter(f model.Filter) {
	m.ctl.SetFilter(f)
	m.cursor = 0
}

// sync pulls controller state into the widgets.
func (m *Model) sync() tea.Cmd {
	visible := m.ctl.FilteredTodos()
	if m.cursor >= len(visible) {
		m.cursor = len(visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	m.keys.Delete.SetEnabled(len(visible) > 0)
	m.keys.ClearCompleted.SetEnabled(m.ctl.CanClearCompleted())
	m.keys.Up.SetEnabled(len(visible) > 1)
	m.keys.Down.SetEnabled(len(visible) > 1)

	if m.input.Value() != m.ctl.NewTodoTitle() {
		m.input.SetValue(m.ctl.NewTodoTitle())
	}
	if m.ctl.IsAdding() {
		m.input.Blur()
		return nil
	}
	if m.ctl.TakeFocus() || !m.input.Focused() {
		return m.input.Focus()
	}
	return nil
}

func (m *Model) selected() (model.Todo, bool) {
	visible := m.ctl.FilteredTodos()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return model.Todo{}, false
	}
	return visible[m.cursor], true
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ctl.Configured() {
		return m.warningView()
	}

	sections := []string{
		titleStyle.Render("todos"),
		m.inputView(),
	}
	if list := m.listView(); list != "" {
		sections = append(sections, list)
	}
	if m.ctl.FooterVisible() {
		sections = append(sections, m.footerView())
	}
	if msg := m.ctl.ErrorMessage(); msg != "" {
		sections = append(sections, bannerStyle.Render(
			errorStyle.Render("✖ "+msg)+"  "+mutedStyle.Render("esc to dismiss")))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) inputView() string {
	style := inputBoxStyle
	if w := m.width - 4; w > 20 {
		style = style.Width(w)
	}
	view := m.input.View()
	if m.ctl.IsAdding() {
		view = mutedStyle.Render(m.input.Prompt + m.input.Value())
	}
	return style.Render(view)
}

func (m *Model) listView() string {
	var lines []string
	for i, t := range m.ctl.FilteredTodos() {
		lines = append(lines, m.todoLine(t, i == m.cursor))
	}
	if temp, ok := m.ctl.TempTodo(); ok {
		lines = append(lines, m.todoLine(temp, false))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) todoLine(t model.Todo, selected bool) string {
	marker := mutedStyle.Render(Current().BoxUnchecked)
	title := t.Title
	if t.Completed {
		marker = successStyle.Render(Current().BoxChecked)
		title = doneStyle.Render(title)
	}
	if t.IsPlaceholder() || m.ctl.IsLoading(t.ID) {
		marker = m.spinner.View()
		title = mutedStyle.Render(t.Title)
	}

	prefix := "  "
	if selected {
		prefix = selectedStyle.Render("›") + " "
	}
	return prefix + marker + " " + title
}

func (m *Model) footerView() string {
	count := mutedStyle.Render(fmt.Sprintf("%d items left", m.ctl.ActiveCount()))

	tabs := make([]string, 0, len(model.Filters))
	for _, f := range model.Filters {
		if f == m.ctl.Filter() {
			tabs = append(tabs, filterSelectedStyle.Render(f.Label()))
		} else {
			tabs = append(tabs, filterStyle.Render(f.Label()))
		}
	}
	nav := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	clearAction := mutedStyle.Render("Clear completed")
	if m.ctl.CanClearCompleted() {
		clearAction = accentStyle.Render("Clear completed")
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, count, "   ", nav, "   ", clearAction)
}

func (m *Model) warningView() string {
	return panelString(strings.Join([]string{
		errorStyle.Render("No user id configured"),
		"",
		"Set user_id in todos.toml, TODOS_USER_ID in the environment",
		"or pass --user to load your todos.",
		"",
		helpStyle.Render("ctrl+c to quit"),
	}, "\n"))
}
