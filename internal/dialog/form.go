package dialog

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/AgentDesk/internal/gateway"
)

// NoticeMsg asks the shell to show a transient notice.
type NoticeMsg struct {
	Text string
}

func notify(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text} }
}

// Deps are the collaborators every dialog needs.
type Deps struct {
	Gateway gateway.Gateway
	// T localizes a message key in the current language.
	T func(string) string
	// Context bounds remote calls; it is cancelled on shutdown.
	Context context.Context
	Keys    *KeyMap
}

func (d Deps) withDefaults() Deps {
	if d.Gateway == nil {
		d.Gateway = gateway.Unavailable()
	}
	if d.T == nil {
		d.T = func(key string) string { return key }
	}
	if d.Context == nil {
		d.Context = context.Background()
	}
	if d.Keys == nil {
		keys := DefaultKeyMap
		d.Keys = &keys
	}
	return d
}

// field is one labelled text input.
type field struct {
	label string // localization key
	input textinput.Model
}

func newField(label string, secret bool) field {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 256
	if secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	return field{label: label, input: input}
}

// form tracks focus over the visible subset of a dialog's fields.
type form struct {
	fields  []field
	visible []int
	pos     int
}

func (f *form) show(indices ...int) tea.Cmd {
	f.visible = indices
	f.pos = 0
	return f.refocus()
}

func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].input.Reset()
		f.fields[i].input.Blur()
	}
}

func (f *form) focused() int {
	if len(f.visible) == 0 {
		return -1
	}
	return f.visible[f.pos]
}

func (f *form) onLast() bool {
	return f.pos == len(f.visible)-1
}

func (f *form) next() tea.Cmd {
	if len(f.visible) == 0 {
		return nil
	}
	f.pos = (f.pos + 1) % len(f.visible)
	return f.refocus()
}

func (f *form) prev() tea.Cmd {
	if len(f.visible) == 0 {
		return nil
	}
	f.pos = (f.pos + len(f.visible) - 1) % len(f.visible)
	return f.refocus()
}

func (f *form) refocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.fields {
		if i == f.focused() {
			cmd = f.fields[i].input.Focus()
		} else {
			f.fields[i].input.Blur()
		}
	}
	return cmd
}

// update forwards msg to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	i := f.focused()
	if i < 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[i].input, cmd = f.fields[i].input.Update(msg)
	return cmd
}

func (f *form) value(i int) string {
	return f.fields[i].input.Value()
}

func (f *form) set(i int, value string) {
	f.fields[i].input.SetValue(value)
}

// rows returns label and input view pairs for the visible fields.
func (f *form) rows(t func(string) string) [][2]string {
	rows := make([][2]string, 0, len(f.visible))
	for _, i := range f.visible {
		rows = append(rows, [2]string{t(f.fields[i].label), f.fields[i].input.View()})
	}
	return rows
}
