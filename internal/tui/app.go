// Package tui provides the interactive terminal UI for todo.
package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/todo/internal/tasksync"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

// App is the main TUI application model.
type App struct {
	ctx        context.Context
	store      *tasksync.Store
	state      tasksync.State
	form       *FormModel
	list       *TaskListModel
	submitting bool
	width      int
	height     int
}

// New creates a new TUI application over store.
func New(ctx context.Context, store *tasksync.Store) *App {
	return &App{
		ctx:   ctx,
		store: store,
		state: store.Snapshot(),
		form:  NewFormModel(),
		list:  NewTaskListModel(),
	}
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))

	cancel := a.store.Subscribe(func(st tasksync.State) {
		p.Send(stateMsg{st})
	})
	defer cancel()

	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.form.Focus(),
		a.activate(),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetWidth(msg.Width)

	case stateMsg:
		a.state = msg.state
		a.list.Clamp(len(a.state.Tasks))

	case createdMsg:
		a.submitting = false
		if msg.err != nil {
			a.form.SetMessage(msg.err.Error())
			return a, nil
		}
		return a, a.form.Reset()

	case completedMsg:
		a.list.DoneCompleting(msg.id)

	default:
		return a, a.form.Update(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "tab", "shift+tab":
		if a.form.Focused() {
			a.form.Blur()
			return a, nil
		}
		return a, a.form.Focus()
	}

	if a.form.Focused() {
		switch msg.String() {
		case "ctrl+n":
			return a, a.form.NextField()
		case "ctrl+s":
			return a, a.submit()
		case "enter":
			if title, _ := a.form.Values(); a.form.focusIdx == 0 && title != "" {
				return a, a.form.NextField()
			}
		}
		return a, a.form.Update(msg)
	}

	switch msg.String() {
	case "q", "esc":
		return a, tea.Quit
	case "up", "k":
		a.list.Up()
	case "down", "j":
		a.list.Down(len(a.state.Tasks))
	case "d", "enter":
		if task, ok := a.list.Selected(a.state.Tasks); ok {
			return a, a.complete(task.ID)
		}
	case "r":
		return a, a.refresh()
	}
	return a, nil
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Todo Task Manager") + "\n")
	b.WriteString(helpStyle.Render(" Manage your tasks efficiently") + "\n\n")

	b.WriteString(a.form.View(a.busy()) + "\n\n")
	b.WriteString(a.list.View(a.state, !a.form.Focused()) + "\n\n")

	var status string
	if a.form.Focused() {
		status = " Ctrl+S:create | Ctrl+N:next field | Tab:tasks | Ctrl+C:quit"
	} else {
		status = " ↑↓:nav | d:done | r:refresh | Tab:form | q:quit"
	}
	b.WriteString(statusBarStyle.Width(max(a.width, len(status)+2)).Render(status))

	return b.String()
}

func (a *App) busy() bool {
	return a.submitting || a.state.Loading
}

func (a *App) submit() tea.Cmd {
	if a.busy() || !a.form.Validate() {
		return nil
	}
	a.submitting = true
	title, desc := a.form.Values()
	return func() tea.Msg {
		_, err := a.store.CreateTask(a.ctx, title, desc)
		return createdMsg{err: err}
	}
}

func (a *App) complete(id string) tea.Cmd {
	if !a.list.MarkCompleting(id) {
		return nil
	}
	return func() tea.Msg {
		err := a.store.CompleteTask(a.ctx, id)
		return completedMsg{id: id, err: err}
	}
}

func (a *App) refresh() tea.Cmd {
	return func() tea.Msg {
		a.store.Refresh(a.ctx)
		return nil
	}
}

func (a *App) activate() tea.Cmd {
	return func() tea.Msg {
		a.store.Activate(a.ctx)
		return nil
	}
}
