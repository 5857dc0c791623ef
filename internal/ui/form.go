package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/transfer"
)

// Form field indices
const (
	tabField = iota
	sectionField
	categoryField
	textField
)

// CustomForm collects a new custom prompt
type CustomForm struct {
	inputs    []textinput.Model
	textarea  textarea.Model
	focused   int
	submitted bool
	cancelled bool
}

// NewCustomForm creates an empty form. The location placeholders show the
// values used when a field is left empty.
func NewCustomForm(defaults transfer.Defaults) *CustomForm {
	inputs := make([]textinput.Model, 3)

	inputs[tabField] = textinput.New()
	inputs[tabField].Placeholder = defaults.Tab
	inputs[tabField].CharLimit = 80
	inputs[tabField].Width = 40

	inputs[sectionField] = textinput.New()
	inputs[sectionField].Placeholder = defaults.Section
	inputs[sectionField].CharLimit = 80
	inputs[sectionField].Width = 40

	inputs[categoryField] = textinput.New()
	inputs[categoryField].Placeholder = defaults.Category
	inputs[categoryField].CharLimit = 80
	inputs[categoryField].Width = 40

	ta := textarea.New()
	ta.Placeholder = "Write your prompt here..."
	ta.CharLimit = 0 // unlimited
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(8)
	ta.Focus()

	return &CustomForm{
		inputs:   inputs,
		textarea: ta,
		focused:  textField,
	}
}

// Update handles form updates
func (f *CustomForm) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab":
			f.focus((f.focused + 1) % (len(f.inputs) + 1))
			return nil
		case "shift+tab":
			f.focus((f.focused + len(f.inputs)) % (len(f.inputs) + 1))
			return nil
		case "ctrl+s":
			f.submitted = true
			return nil
		case "esc":
			f.cancelled = true
			return nil
		case "enter":
			// Newlines belong to the prompt text
			if f.focused != textField {
				f.focus(f.focused + 1)
				return nil
			}
		}
	}

	var cmd tea.Cmd
	if f.focused == textField {
		f.textarea, cmd = f.textarea.Update(msg)
	} else {
		f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	}
	return cmd
}

func (f *CustomForm) focus(field int) {
	if f.focused == textField {
		f.textarea.Blur()
	} else {
		f.inputs[f.focused].Blur()
	}

	f.focused = field
	if f.focused == textField {
		f.textarea.Focus()
	} else {
		f.inputs[f.focused].Focus()
	}
}

// Resize updates form dimensions based on window size
func (f *CustomForm) Resize(width, height int) {
	// title, three fields, labels and help
	available := height - 14
	if available < 3 {
		available = 3
	}
	w := width - 10
	if w < 20 {
		w = 20
	}
	f.textarea.SetWidth(w)
	f.textarea.SetHeight(available)
}

// ToInput returns the entered values; the service applies the defaults
func (f *CustomForm) ToInput() models.CustomInput {
	return models.CustomInput{
		Tab:      strings.TrimSpace(f.inputs[tabField].Value()),
		Section:  strings.TrimSpace(f.inputs[sectionField].Value()),
		Category: strings.TrimSpace(f.inputs[categoryField].Value()),
		Text:     f.textarea.Value(),
	}
}

// IsSubmitted reports whether ctrl+s was pressed
func (f *CustomForm) IsSubmitted() bool {
	return f.submitted
}

// IsCancelled reports whether esc was pressed
func (f *CustomForm) IsCancelled() bool {
	return f.cancelled
}

// Resume clears the submitted flag so a rejected form can be edited again
func (f *CustomForm) Resume() {
	f.submitted = false
}

// View renders the form
func (f *CustomForm) View(s Styles) string {
	labels := []string{"Tab", "Section", "Category"}

	var rows []string
	rows = append(rows, s.Title.Render("New custom prompt"), "")
	for i, input := range f.inputs {
		rows = append(rows, s.FormLabel.Render(labels[i]), input.View(), "")
	}
	rows = append(rows, s.FormLabel.Render("Prompt"), f.textarea.View(), "")
	rows = append(rows, s.FormHelp.Render("Tab/Shift+Tab move • Ctrl+S save • Esc cancel • empty location fields use the placeholder"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
