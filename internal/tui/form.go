package tui

import (
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/todo/internal/models"
)

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(fgColor)

	counterStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	buttonStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true).
			Padding(0, 2)

	disabledButtonStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#374151")).
				Foreground(mutedColor).
				Padding(0, 2)
)

// FormModel is the create-task form.
type FormModel struct {
	title       textinput.Model
	description textarea.Model
	focusIdx    int // 0 title, 1 description
	message     string
}

// NewFormModel creates an empty form with the title focused.
func NewFormModel() *FormModel {
	ti := textinput.New()
	ti.Placeholder = "Enter task title"
	ti.CharLimit = models.MaxTitleLength
	ti.Width = 60
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Enter task description"
	ta.CharLimit = models.MaxDescriptionLength
	ta.ShowLineNumbers = false
	ta.SetWidth(62)
	ta.SetHeight(4)

	return &FormModel{
		title:       ti,
		description: ta,
	}
}

// Focused reports whether one of the form fields has focus.
func (m *FormModel) Focused() bool {
	return m.title.Focused() || m.description.Focused()
}

// Focus gives focus back to the last focused field.
func (m *FormModel) Focus() tea.Cmd {
	if m.focusIdx == 1 {
		return m.description.Focus()
	}
	return m.title.Focus()
}

// Blur removes focus from both fields.
func (m *FormModel) Blur() {
	m.title.Blur()
	m.description.Blur()
}

// NextField moves focus between title and description.
func (m *FormModel) NextField() tea.Cmd {
	m.Blur()
	m.focusIdx = (m.focusIdx + 1) % 2
	return m.Focus()
}

// Values returns the current title and description.
func (m *FormModel) Values() (string, string) {
	return m.title.Value(), m.description.Value()
}

// Validate checks the fields and records the first failure for display.
func (m *FormModel) Validate() bool {
	title, desc := m.Values()
	if err := models.ValidateNewTask(title, desc); err != nil {
		m.message = err.Error()
		return false
	}
	m.message = ""
	return true
}

// SetMessage shows msg under the form.
func (m *FormModel) SetMessage(msg string) {
	m.message = msg
}

// Reset clears both fields and the message.
func (m *FormModel) Reset() tea.Cmd {
	m.title.Reset()
	m.description.Reset()
	m.message = ""
	m.Blur()
	m.focusIdx = 0
	return m.Focus()
}

// Update forwards input to the focused field.
func (m *FormModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.focusIdx == 0 {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.description, cmd = m.description.Update(msg)
	}
	return cmd
}

// View renders the form. busy disables the submit button.
func (m *FormModel) View(busy bool) string {
	title, desc := m.Values()

	var b []string
	b = append(b, sectionStyle.Render("Create New Task"))
	b = append(b, labelStyle.Render("Title *")+"  "+
		counterStyle.Render(fmt.Sprintf("%d/%d", utf8.RuneCountInString(title), models.MaxTitleLength)))
	b = append(b, inputBoxStyle.Render(m.title.View()))
	b = append(b, labelStyle.Render("Description *")+"  "+
		counterStyle.Render(fmt.Sprintf("%d/%d", utf8.RuneCountInString(desc), models.MaxDescriptionLength)))
	b = append(b, inputBoxStyle.Render(m.description.View()))

	if m.message != "" {
		b = append(b, errorStyle.Render(m.message))
	}

	if busy {
		b = append(b, disabledButtonStyle.Render("Creating..."))
	} else {
		b = append(b, buttonStyle.Render("Create Task"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, b...)
}
