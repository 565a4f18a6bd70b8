package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/tasksync"
)

// createdLayout is how task creation times are shown on cards.
const createdLayout = "Jan 2, 2006 03:04 PM"

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	selectedCardStyle = cardStyle.Copy().
				BorderForeground(primaryColor)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(fgColor)

	dateStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)
)

// TaskListModel renders the visible tasks and tracks the selection.
type TaskListModel struct {
	selectedIdx int
	completing  map[string]bool
	width       int
}

// NewTaskListModel creates an empty task list.
func NewTaskListModel() *TaskListModel {
	return &TaskListModel{
		completing: make(map[string]bool),
	}
}

// SetWidth sets the card width.
func (m *TaskListModel) SetWidth(w int) {
	m.width = w
}

// Up moves the selection up.
func (m *TaskListModel) Up() {
	if m.selectedIdx > 0 {
		m.selectedIdx--
	}
}

// Down moves the selection down within n tasks.
func (m *TaskListModel) Down(n int) {
	if m.selectedIdx < n-1 {
		m.selectedIdx++
	}
}

// Clamp keeps the selection inside a list of n tasks.
func (m *TaskListModel) Clamp(n int) {
	if m.selectedIdx >= n {
		m.selectedIdx = max(0, n-1)
	}
}

// Selected returns the selected task, if any.
func (m *TaskListModel) Selected(tasks []models.Task) (models.Task, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[m.selectedIdx], true
}

// MarkCompleting flags id as having a completion in flight.
// It returns false if one is already running.
func (m *TaskListModel) MarkCompleting(id string) bool {
	if m.completing[id] {
		return false
	}
	m.completing[id] = true
	return true
}

// DoneCompleting clears the in-flight flag for id.
func (m *TaskListModel) DoneCompleting(id string) {
	delete(m.completing, id)
}

// View renders the list for state. focused highlights the selection.
func (m *TaskListModel) View(state tasksync.State, focused bool) string {
	var b strings.Builder

	switch {
	case state.Loading:
		b.WriteString(sectionStyle.Render("Recent Tasks") + "\n")
		b.WriteString(helpStyle.Render("Loading tasks..."))
		return b.String()
	case len(state.Tasks) == 0 && state.Err != "":
		b.WriteString(sectionStyle.Render("Recent Tasks") + "\n")
		b.WriteString(errorStyle.Render("Error: " + state.Err))
		return b.String()
	case len(state.Tasks) == 0:
		b.WriteString(sectionStyle.Render("Recent Tasks") + "\n")
		b.WriteString(helpStyle.Render("No tasks yet. Create your first task above!"))
		return b.String()
	}

	header := fmt.Sprintf("Recent Tasks (%d/%d)", len(state.Tasks), models.VisibleLimit)
	b.WriteString(sectionStyle.Render(header) + "\n")
	// A failed write still leaves the re-fetched list usable.
	if state.Err != "" {
		b.WriteString(errorStyle.Render("Error: "+state.Err) + "\n")
	}

	cards := make([]string, 0, len(state.Tasks))
	for i, task := range state.Tasks {
		cards = append(cards, m.renderCard(task, focused && i == m.selectedIdx))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	return b.String()
}

func (m *TaskListModel) renderCard(task models.Task, selected bool) string {
	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}

	action := doneStyle.Render("[Done]")
	if m.completing[task.ID] {
		action = helpStyle.Render("Completing...")
	}

	lines := []string{
		cardTitleStyle.Render(task.Title) + "  " + action,
		task.Description,
		dateStyle.Render("Created: " + task.CreatedAt.Local().Format(createdLayout)),
	}
	return style.Render(strings.Join(lines, "\n"))
}
