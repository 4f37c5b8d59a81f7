// Package contactform содержит модель формы обратной связи для TUI
package contactform

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-portfolio/internal/contact"
)

// ResetDelay через сколько после успешной отправки форма очищается
const ResetDelay = 3 * time.Second

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(12)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).PaddingLeft(13)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Margin(1, 0)
)

// GoBackMsg отправляется при выходе из формы
type GoBackMsg struct{}

// SubmitResultMsg содержит результат отправки формы
type SubmitResultMsg struct {
	Errors contact.Errors
}

// ResetMsg очищает форму после успешной отправки
type ResetMsg struct{}

// Model представляет модель формы обратной связи
type Model struct {
	ctx        context.Context
	submitter  *contact.Submitter
	inputs     []textinput.Model
	focusIndex int
	errors     contact.Errors
	submitting bool
	submitted  bool
}

// NewModel создает новую модель формы
func NewModel(ctx context.Context, submitter *contact.Submitter) *Model {
	m := &Model{
		ctx:       ctx,
		submitter: submitter,
		errors:    contact.Errors{},
	}
	m.inputs = newInputs()
	return m
}

func newInputs() []textinput.Model {
	placeholders := map[contact.Field]string{
		contact.FieldName:    "Ваше имя",
		contact.FieldEmail:   "you@example.com",
		contact.FieldMessage: "Ваше сообщение",
	}

	inputs := make([]textinput.Model, len(contact.Fields))
	for i, field := range contact.Fields {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[field]
		inputs[i].CharLimit = 500
		inputs[i].PromptStyle = blurredStyle
		inputs[i].TextStyle = blurredStyle
	}

	inputs[0].Focus()
	inputs[0].PromptStyle = focusedStyle
	inputs[0].TextStyle = focusedStyle
	return inputs
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Form возвращает текущие значения формы
func (m *Model) Form() contact.Form {
	var f contact.Form
	for i, field := range contact.Fields {
		f.Set(field, m.inputs[i].Value())
	}
	return f
}

// Errors возвращает текущие ошибки валидации
func (m *Model) Errors() contact.Errors {
	return m.errors
}

// Submitting возвращает true, пока форма отправляется
func (m *Model) Submitting() bool {
	return m.submitting
}

// Submitted возвращает true после успешной отправки
func (m *Model) Submitted() bool {
	return m.submitted
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg {
				return GoBackMsg{}
			}

		case "ctrl+s":
			return m, m.submit()

		case "tab", "shift+tab", "enter", "up", "down":
			s := msg.String()

			if s == "enter" && m.focusIndex == len(m.inputs) {
				// Enter на кнопке отправки
				return m, m.submit()
			}

			// Проверяем поле, с которого уходит фокус
			if m.focusIndex < len(m.inputs) {
				m.validateField(contact.Fields[m.focusIndex])
			}

			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}

			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}

			return m, m.updateFocus()
		}

	case SubmitResultMsg:
		m.submitting = false
		if !msg.Errors.Ok() {
			m.errors = msg.Errors
			return m, nil
		}
		m.errors = contact.Errors{}
		m.submitted = true
		return m, tea.Tick(ResetDelay, func(time.Time) tea.Msg {
			return ResetMsg{}
		})

	case ResetMsg:
		m.Reset()
		return m, textinput.Blink

	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = msg.Width - 20
		}
		return m, nil
	}

	// Обновляем активное поле ввода
	if m.focusIndex < len(m.inputs) {
		before := m.inputs[m.focusIndex].Value()
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		if m.inputs[m.focusIndex].Value() != before {
			// ввод очищает ошибку поля
			delete(m.errors, contact.Fields[m.focusIndex])
			m.submitted = false
		}
		return m, cmd
	}

	return m, nil
}

// Reset очищает форму
func (m *Model) Reset() {
	m.inputs = newInputs()
	m.focusIndex = 0
	m.errors = contact.Errors{}
	m.submitting = false
	m.submitted = false
}

func (m *Model) updateFocus() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := 0; i < len(m.inputs); i++ {
		if i == m.focusIndex {
			cmds[i] = m.inputs[i].Focus()
			m.inputs[i].PromptStyle = focusedStyle
			m.inputs[i].TextStyle = focusedStyle
		} else {
			m.inputs[i].Blur()
			m.inputs[i].PromptStyle = blurredStyle
			m.inputs[i].TextStyle = blurredStyle
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) validateField(field contact.Field) {
	if msg := contact.ValidateField(m.Form(), field); msg != "" {
		m.errors[field] = msg
	} else {
		delete(m.errors, field)
	}
}

// submit проверяет форму и запускает отправку
func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}

	form := m.Form()
	if errs := contact.Validate(form); !errs.Ok() {
		m.errors = errs
		m.submitted = false
		return nil
	}

	m.submitting = true
	ctx := m.ctx
	submitter := m.submitter
	return func() tea.Msg {
		return SubmitResultMsg{Errors: submitter.Submit(ctx, form)}
	}
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("✉️  Напишите мне"))
	b.WriteString("\n")

	labels := []string{"Имя:", "Email:", "Сообщение:"}
	for i, input := range m.inputs {
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString(" ")
		b.WriteString(input.View())
		b.WriteString("\n")
		if msg, ok := m.errors[contact.Fields[i]]; ok {
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	button := "[ Отправить ]"
	if m.submitting {
		button = "[ Отправка... ]"
	}
	if m.focusIndex == len(m.inputs) {
		button = focusedStyle.Render(button)
	} else {
		button = blurredStyle.Render(button)
	}
	b.WriteString(button)
	b.WriteString("\n")

	if m.submitted {
		b.WriteString(successStyle.Render("✅ Сообщение отправлено! Спасибо."))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Tab/Enter: следующее поле • Shift+Tab: предыдущее • Ctrl+S: отправить • Esc: назад"))

	return b.String()
}
