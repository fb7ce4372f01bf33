package models

// View identifies the main pane selected from the sidebar.
type View string

const (
	ViewConversations View = "conversations"
	ViewContacts      View = "contacts"
	ViewReports       View = "reports"
	ViewSettings      View = "settings"
)

// NavItem is one sidebar navigation entry. Permission names the capability
// the host must grant for the entry to be visible.
type NavItem struct {
	View       View
	LabelKey   string
	Permission string
}

// DefaultNavItems is the navigation the shell offers before permission
// filtering.
var DefaultNavItems = []NavItem{
	{View: ViewConversations, LabelKey: "nav.conversations", Permission: "conversations.read"},
	{View: ViewContacts, LabelKey: "nav.contacts", Permission: "contacts.read"},
	{View: ViewReports, LabelKey: "nav.reports", Permission: "reports.read"},
	{View: ViewSettings, LabelKey: "nav.settings", Permission: "settings.manage"},
}

// MenuAction is what activating a sidebar entry does.
type MenuAction string

const (
	ActionNavigate    MenuAction = "navigate"
	ActionStatus      MenuAction = "status"
	ActionLanguage    MenuAction = "language"
	ActionPassword    MenuAction = "password"
	ActionEmail       MenuAction = "email"
	ActionAvatar      MenuAction = "avatar"
	ActionSwitchAgent MenuAction = "switch_agent"
	ActionLogout      MenuAction = "logout"
)

// MenuEntry is one selectable sidebar row.
type MenuEntry struct {
	Action   MenuAction
	View     View // set for ActionNavigate
	LabelKey string
}

// BuildMenu lists the sidebar entries visible to an agent. can gates the
// navigation items; embedded hides the agent switch.
func BuildMenu(can func(permission string) bool, embedded bool, signedIn bool) []MenuEntry {
	var entries []MenuEntry
	for _, item := range DefaultNavItems {
		if can != nil && !can(item.Permission) {
			continue
		}
		entries = append(entries, MenuEntry{Action: ActionNavigate, View: item.View, LabelKey: item.LabelKey})
	}
	if signedIn {
		entries = append(entries,
			MenuEntry{Action: ActionStatus, LabelKey: "sidebar.availability"},
			MenuEntry{Action: ActionLanguage, LabelKey: "sidebar.language"},
			MenuEntry{Action: ActionPassword, LabelKey: "sidebar.change_password"},
			MenuEntry{Action: ActionEmail, LabelKey: "sidebar.update_email"},
			MenuEntry{Action: ActionAvatar, LabelKey: "sidebar.update_avatar"},
		)
	} else {
		entries = append(entries, MenuEntry{Action: ActionLanguage, LabelKey: "sidebar.language"})
	}
	if !embedded {
		entries = append(entries, MenuEntry{Action: ActionSwitchAgent, LabelKey: "sidebar.switch_agent"})
	}
	if signedIn {
		entries = append(entries, MenuEntry{Action: ActionLogout, LabelKey: "sidebar.logout"})
	}
	return entries
}

// ShellModel represents the UI state - only local UI concerns
type ShellModel struct {
	Identity     *AgentIdentity // nil until the core delivers a session
	Status       string         // Status bar text
	Notice       string         // Transient success notice
	Loading      bool           // Session request in flight
	LoadingDots  int            // Animation counter for loading dots
	Width        int            // Terminal width
	Height       int            // Terminal height
	View         View
	Cursor       int // Sidebar cursor
	ShowHelp     bool
	ShowLanguage bool // Language picker visible
	LangCursor   int
	Languages    []Language
	LangLoaded   bool
	NoticeID     int  // Guards against clearing a newer notice
	SignedOut    bool // Session ended; the program is quitting
	Language     string
	// SwitchRequested is set when the agent quits to pick another profile.
	SwitchRequested bool
	// PasswordPrompted records that the mandatory password dialog was opened.
	PasswordPrompted bool
}
