package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nicolagi/tasks"
)

var (
	faintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("221")).Bold(true)
	activeTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).Underline(true)
	alertStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	priorityStyles = map[tasks.Priority]lipgloss.Style{
		tasks.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		tasks.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		tasks.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

const tuiHelp = "enter add · ctrl+p priority · tab filter · ↑/↓ move · space toggle · ctrl+d delete · ctrl+x clear completed · esc quit"

// changedMsg tells the model the store has a new task list.
type changedMsg struct{}

type model struct {
	// children
	input textinput.Model

	// supplied
	store   *tasks.Store
	changes chan struct{}

	// state
	view     tasks.View
	priority tasks.Priority
	cursor   int
	alert    string
	width    int
}

// newModel builds the model and subscribes it to store changes.
func newModel(store *tasks.Store, filter tasks.Filter) model {
	input := textinput.New()
	input.Placeholder = "What needs to be done?"
	input.Prompt = "> "
	input.PromptStyle = cursorStyle
	input.Focus()

	m := model{
		input:    input,
		store:    store,
		changes:  make(chan struct{}, 1),
		view:     store.View(filter),
		priority: tasks.PriorityMedium,
	}
	changes := m.changes
	store.OnChange(func([]tasks.Task) {
		select {
		case changes <- struct{}{}:
		default:
			// A notification is already pending; the model reads the latest list when it handles it.
		}
	})
	return m
}

func runTUI(store *tasks.Store, filter tasks.Filter) error {
	_, err := tea.NewProgram(newModel(store, filter)).Run()
	return err
}

func (m model) waitForChange() tea.Msg {
	<-m.changes
	return changedMsg{}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.refresh(m.view.Filter)
		return m, m.waitForChange
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		return m, nil
	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey reports false for keys meant for the text input.
func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		return m, tea.Quit, true
	case tea.KeyEnter:
		text := m.input.Value()
		m.input.Reset()
		m.report(m.store.Add(text, m.priority))
		return m, nil, true
	case tea.KeyCtrlP:
		m.priority = m.priority.Next()
		return m, nil, true
	case tea.KeyTab:
		m.refresh(m.view.Filter.Next())
		m.cursor = 0
		return m, nil, true
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil, true
	case tea.KeyDown:
		if m.cursor < len(m.view.Entries)-1 {
			m.cursor++
		}
		return m, nil, true
	case tea.KeySpace:
		if m.input.Value() != "" {
			return m, nil, false
		}
		if e, ok := m.selected(); ok {
			m.report(m.store.ToggleCompleteByID(e.ID))
		}
		return m, nil, true
	case tea.KeyCtrlD:
		if e, ok := m.selected(); ok {
			m.report(m.store.DeleteByID(e.ID))
		}
		return m, nil, true
	case tea.KeyCtrlX:
		m.report(m.store.ClearCompleted())
		return m, nil, true
	}
	return m, nil, false
}

func (m model) selected() (tasks.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Entries) {
		return tasks.Entry{}, false
	}
	return m.view.Entries[m.cursor], true
}

func (m *model) report(err error) {
	if err != nil {
		m.alert = err.Error()
	} else {
		m.alert = ""
	}
}

// refresh projects the store's current list under f and keeps the cursor within the view.
func (m *model) refresh(f tasks.Filter) {
	m.view = m.store.View(f)
	if m.cursor >= len(m.view.Entries) {
		m.cursor = len(m.view.Entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.renderFilters())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("  ")
	b.WriteString(priorityStyles[m.priority].Render(string(m.priority)))
	b.WriteString("\n\n")

	if m.view.Empty() {
		b.WriteString(faintStyle.Render(m.view.EmptyMessage()))
		b.WriteRune('\n')
	}
	for i, e := range m.view.Entries {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("› ")
		}
		text := e.Text
		if e.Completed {
			text = doneStyle.Render(text)
		}
		b.WriteString(pointer)
		b.WriteString(checkbox(e.Completed))
		b.WriteRune(' ')
		b.WriteString(text)
		b.WriteRune(' ')
		b.WriteString(priorityStyles[e.Priority].Render(string(e.Priority)))
		b.WriteRune('\n')
	}

	b.WriteRune('\n')
	b.WriteString(m.view.RemainingLabel())
	b.WriteRune('\n')
	if m.alert != "" {
		b.WriteString(alertStyle.Render(m.alert))
		b.WriteRune('\n')
	}
	b.WriteString(faintStyle.Render(tuiHelp))
	b.WriteRune('\n')
	return b.String()
}

func (m model) renderFilters() string {
	var tabs []string
	for _, f := range tasks.Filters {
		name := f.String()
		if f == m.view.Filter {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, faintStyle.Render(name))
		}
	}
	return strings.Join(tabs, "  ")
}
