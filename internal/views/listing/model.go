package listing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"

	"github.com/mercari-build-training/simple-mercari/tui/internal/backend"
	"github.com/mercari-build-training/simple-mercari/tui/internal/ui"
)

// CompletedMsg reports that a submission finished, successfully or not.
type CompletedMsg struct{}

// SubmittedMsg carries the result of `POST /items`.
type SubmittedMsg struct {
	Item  backend.NewItem
	Items []backend.Item
	Err   error
}

// Submitter is the part of the API the form writes to.
type Submitter interface {
	AddItem(ctx context.Context, item backend.NewItem) ([]backend.Item, error)
}

var (
	ErrNameRequired     = errors.New("name is required")
	ErrCategoryRequired = errors.New("category is required")
	ErrImageNotJPG      = errors.New("only .jpg images are allowed")
)

const (
	fieldName = iota
	fieldCategory
	fieldImage
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Category", "Image"}

// Model is the listing form.
type Model struct {
	submitter Submitter
	timeout   time.Duration

	inputs     [fieldCount]textinput.Model
	focusIdx   int
	focused    bool
	submitting bool
	status     string
	err        error
	width      int
	categories []string
}

// New creates an empty listing form.
func New(submitter Submitter, timeout time.Duration) Model {
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = "› "
		ti.CharLimit = 128
		inputs[i] = ti
	}
	inputs[fieldName].Placeholder = "item name"
	inputs[fieldCategory].Placeholder = "category"
	inputs[fieldCategory].ShowSuggestions = true
	inputs[fieldCategory].KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("right"))
	inputs[fieldImage].Placeholder = "path/to/image.jpg (optional)"
	inputs[fieldImage].CharLimit = 1024

	return Model{
		submitter: submitter,
		timeout:   timeout,
		inputs:    inputs,
	}
}

// Validate checks a submission before it is sent.
func Validate(item backend.NewItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(item.Category) == "" {
		return ErrCategoryRequired
	}
	if item.ImagePath != "" && !strings.HasSuffix(strings.ToLower(item.ImagePath), ".jpg") {
		return ErrImageNotJPG
	}
	return nil
}

// SetCategories offers known categories as completions for the category field.
func (m *Model) SetCategories(categories []string) {
	m.categories = categories
	m.inputs[fieldCategory].SetSuggestions(categories)
}

// Categories returns the suggestions offered for the category field.
func (m *Model) Categories() []string { return m.categories }

// SetSize updates the form width.
func (m *Model) SetSize(w int) {
	m.width = w
	for i := range m.inputs {
		m.inputs[i].SetWidth(max(w-16, 10))
	}
}

// Focus activates the current field.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.inputs[m.focusIdx].Focus()
}

// Blur deactivates the form.
func (m *Model) Blur() {
	m.focused = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// Focused reports whether the form has keyboard focus.
func (m *Model) Focused() bool { return m.focused }

// Submitting reports whether a submission is in flight.
func (m *Model) Submitting() bool { return m.submitting }

// Err returns the last validation or submission error.
func (m *Model) Err() error { return m.err }

// Value returns the form contents as a submission.
func (m *Model) Value() backend.NewItem {
	return backend.NewItem{
		Name:      strings.TrimSpace(m.inputs[fieldName].Value()),
		Category:  strings.TrimSpace(m.inputs[fieldCategory].Value()),
		ImagePath: strings.TrimSpace(m.inputs[fieldImage].Value()),
	}
}

// SetValue fills the form.
func (m *Model) SetValue(item backend.NewItem) {
	m.inputs[fieldName].SetValue(item.Name)
	m.inputs[fieldCategory].SetValue(item.Category)
	m.inputs[fieldImage].SetValue(item.ImagePath)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(SubmittedMsg); ok {
		m.submitting = false
		if msg.Err != nil {
			slog.Warn("add item", "name", msg.Item.Name, "error", msg.Err)
			m.err = msg.Err
			m.status = ""
		} else {
			slog.Info("item listed", "name", msg.Item.Name, "category", msg.Item.Category)
			m.err = nil
			m.status = "Listed " + msg.Item.Name
			m.reset()
		}
		return m, completed
	}

	if !m.focused {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case "ctrl+s":
			return m, m.submit()
		case "enter":
			if m.focusIdx < fieldCount-1 {
				return m, m.setFocus(m.focusIdx + 1)
			}
			return m, m.submit()
		case "down":
			return m, m.setFocus((m.focusIdx + 1) % fieldCount)
		case "up":
			return m, m.setFocus((m.focusIdx + fieldCount - 1) % fieldCount)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
	return m, cmd
}

// View renders the form fields and the outcome of the last submission.
func (m Model) View() string {
	var b strings.Builder
	for i, in := range m.inputs {
		label := ui.StyleLabel.Render(fieldLabels[i])
		if m.focused && i == m.focusIdx {
			label = ui.StyleLabel.Foreground(ui.ColorAccent).Render(fieldLabels[i])
		}
		b.WriteString(label + in.View() + "\n")
	}

	switch {
	case m.submitting:
		b.WriteString(ui.StyleWarn.Render("Submitting..."))
	case m.err != nil:
		b.WriteString(ui.StyleError.Render("Error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(ui.StyleActive.Render(m.status))
	default:
		b.WriteString(ui.StyleDim.Render("enter next/list  ctrl+s list  → accept category"))
	}
	return b.String()
}

func (m *Model) setFocus(idx int) tea.Cmd {
	m.inputs[m.focusIdx].Blur()
	m.focusIdx = idx
	return m.inputs[idx].Focus()
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	item := m.Value()
	if err := Validate(item); err != nil {
		m.err = err
		m.status = ""
		return nil
	}

	m.submitting = true
	m.err = nil
	m.status = ""
	s, timeout := m.submitter, m.timeout
	return func() tea.Msg {
		ctx, cancel := backend.WithTimeout(context.Background(), timeout)
		defer cancel()
		items, err := s.AddItem(ctx, item)
		return SubmittedMsg{Item: item, Items: items, Err: err}
	}
}

func (m *Model) reset() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	if m.focused {
		m.setFocus(fieldName)
	}
}

func completed() tea.Msg { return CompletedMsg{} }
