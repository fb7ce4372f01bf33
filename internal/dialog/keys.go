package dialog

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the bindings shared by every dialog. Help descriptions are
// localization keys.
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Enter  key.Binding // Next field, or submit on the last one.
	Submit key.Binding
	Close  key.Binding
}

// DefaultKeyMap is the built-in dialog key set.
var DefaultKeyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "help.next_field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "help.submit"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "help.close"),
	),
}

// helpLine renders the enabled bindings that carry help text.
func helpLine(t func(string) string, bindings ...key.Binding) string {
	var out string
	for _, binding := range bindings {
		if !binding.Enabled() || binding.Help().Key == "" {
			continue
		}
		if out != "" {
			out += "  "
		}
		out += binding.Help().Key + " " + t(binding.Help().Desc)
	}
	return out
}
