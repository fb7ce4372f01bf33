package update

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the shell bindings outside of dialogs. Help descriptions are
// localization keys.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Back     key.Binding
	Status   key.Binding
	Language key.Binding
	Password key.Binding
	Email    key.Binding
	Avatar   key.Binding
	Logout   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap is the built-in shell key set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/↓", "help.navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "help.select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "help.close"),
	),
	Status: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "help.status"),
	),
	Language: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "help.language"),
	),
	Password: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "help.password"),
	),
	Email: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "help.email"),
	),
	Avatar: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "help.avatar"),
	),
	Logout: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("C-x", "help.logout"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help.toggle"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "help.quit"),
	),
}

// ShortHelp is the bindings listed in the collapsed help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Select, k.Help, k.Quit}
}

// FullHelp is every binding that carries help text.
func (k KeyMap) FullHelp() []key.Binding {
	return []key.Binding{k.Up, k.Select, k.Status, k.Language, k.Password, k.Email, k.Avatar, k.Logout, k.Help, k.Quit}
}
