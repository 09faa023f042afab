package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theakshaypant/concertdb/internal/core"
)

type fieldKind int

const (
	textField fieldKind = iota
	choiceField
)

type formField struct {
	label    string
	kind     fieldKind
	input    textinput.Model
	options  []string
	selected int
}

// Form is a modal that collects input and yields exactly one formResultMsg.
// It never writes to storage; submit validates and builds the record.
type Form struct {
	title  string
	fields []formField
	focus  int
	keys   formKeyMap
	submit func(*Form) (core.Record, error)
}

func newForm(title string, submit func(*Form) (core.Record, error)) *Form {
	return &Form{title: title, keys: defaultFormKeys, submit: submit}
}

func (f *Form) addText(label, placeholder, value string) *Form {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 120
	ti.Width = 40
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(value)
	f.fields = append(f.fields, formField{label: label, kind: textField, input: ti})
	f.refocus()
	return f
}

func (f *Form) addChoice(label string, options []string, selected int) *Form {
	if selected < 0 || selected >= len(options) {
		selected = 0
	}
	f.fields = append(f.fields, formField{label: label, kind: choiceField, options: options, selected: selected})
	f.refocus()
	return f
}

// Title returns the modal heading.
func (f *Form) Title() string { return f.title }

// Value returns the text of field i.
func (f *Form) Value(i int) string { return f.fields[i].input.Value() }

// Selected returns the chosen option index of field i, or -1 without options.
func (f *Form) Selected(i int) int {
	if len(f.fields[i].options) == 0 {
		return -1
	}
	return f.fields[i].selected
}

func (f *Form) refocus() {
	for i := range f.fields {
		if f.fields[i].kind != textField {
			continue
		}
		if i == f.focus {
			f.fields[i].input.Focus()
		} else {
			f.fields[i].input.Blur()
		}
	}
}

func (f *Form) move(delta int) {
	n := len(f.fields)
	if n == 0 {
		return
	}
	f.focus = (f.focus + delta + n) % n
	f.refocus()
}

// Update handles a key press. The returned command, when non-nil, carries the
// form's result and closes it.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(km, f.keys.Cancel):
		return func() tea.Msg { return formResultMsg{} }
	case key.Matches(km, f.keys.Submit):
		rec, err := f.submit(f)
		return func() tea.Msg { return formResultMsg{record: rec, err: err} }
	case key.Matches(km, f.keys.Next):
		f.move(1)
		return nil
	case key.Matches(km, f.keys.Prev):
		f.move(-1)
		return nil
	}

	if len(f.fields) == 0 {
		return nil
	}
	field := &f.fields[f.focus]
	if field.kind == choiceField {
		n := len(field.options)
		switch {
		case n == 0:
		case key.Matches(km, f.keys.Left):
			field.selected = (field.selected - 1 + n) % n
		case key.Matches(km, f.keys.Right):
			field.selected = (field.selected + 1) % n
		}
		return nil
	}
	var cmd tea.Cmd
	field.input, cmd = field.input.Update(km)
	return cmd
}

func (f *Form) View() string {
	lines := []string{TitleStyle.Render(f.title)}
	for i, field := range f.fields {
		label := LabelStyle.Render(field.label + ":")
		if i == f.focus {
			label = FocusLabelStyle.Render(field.label + ":")
		}
		lines = append(lines, label)
		switch field.kind {
		case textField:
			lines = append(lines, field.input.View())
		case choiceField:
			if len(field.options) == 0 {
				lines = append(lines, EmptyChoiceStyle.Render("  (none)"))
			} else {
				lines = append(lines, ChoiceStyle.Render("‹ "+field.options[field.selected]+" ›"))
			}
		}
		lines = append(lines, "")
	}
	help := []string{
		HelpKeyStyle.Render("enter") + " save",
		HelpKeyStyle.Render("esc") + " cancel",
		HelpKeyStyle.Render("tab") + " next",
		HelpKeyStyle.Render("←/→") + " choose",
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Render(strings.Join(help, "  ")))
	return ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
