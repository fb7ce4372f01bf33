package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/AgentDesk/internal/dialog"
	"github.com/Rorical/AgentDesk/internal/dispatcher"
	"github.com/Rorical/AgentDesk/internal/eventbus"
	"github.com/Rorical/AgentDesk/internal/logging"
	"github.com/Rorical/AgentDesk/internal/models"
	"github.com/Rorical/AgentDesk/internal/update"
	"github.com/Rorical/AgentDesk/ui/components"
	"github.com/Rorical/AgentDesk/ui/styles"
)

// profileDialog is what the shell needs from each profile dialog.
type profileDialog interface {
	IsOpen() bool
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
	Teardown()
}

// AppModel is the root Bubble Tea model. It owns the shell state and the
// three profile dialogs, and routes input to whichever dialog is open.
type AppModel struct {
	shell      models.ShellModel
	env        *update.Env
	dispatcher *dispatcher.EventDispatcher

	password *dialog.PasswordDialog
	email    *dialog.EmailDialog
	avatar   *dialog.AvatarDialog
}

// NewAppModel wires the dialogs' success callbacks to the core.
func NewAppModel(shell models.ShellModel, env *update.Env, disp *dispatcher.EventDispatcher, deps dialog.Deps, avatar *dialog.AvatarDialog) *AppModel {
	if env.Keys == nil {
		keys := update.DefaultKeyMap
		env.Keys = &keys
	}
	if env.Logger == nil {
		env.Logger = logging.Discard()
	}
	m := &AppModel{
		shell:      shell,
		env:        env,
		dispatcher: disp,
		password:   dialog.NewPasswordDialog(deps),
		email:      dialog.NewEmailDialog(deps),
		avatar:     avatar,
	}
	m.password.OnSuccess = func() {
		m.publish(eventbus.PasswordChangedEvent{})
	}
	m.email.OnSuccess = func(email string) {
		m.publish(eventbus.IdentityUpdatedEvent{Change: models.IdentityChange{Email: &email}})
	}
	m.avatar.OnSuccess = func(url string) {
		m.publish(eventbus.IdentityUpdatedEvent{Change: models.IdentityChange{AvatarURL: &url}})
	}
	return m
}

func (m *AppModel) publish(event eventbus.UIEvent) {
	if err := m.dispatcher.Publish(event); err != nil {
		m.env.Logger.Error("publishing dialog result", "error", err)
	}
}

// Shell exposes the shell state, mainly for the caller after the program
// exits.
func (m *AppModel) Shell() models.ShellModel {
	return m.shell
}

func (m *AppModel) activeDialog() profileDialog {
	for _, d := range []profileDialog{m.password, m.email, m.avatar} {
		if d.IsOpen() {
			return d
		}
	}
	return nil
}

// Teardown closes every dialog without reporting, releasing previews.
func (m *AppModel) Teardown() {
	m.password.Teardown()
	m.email.Teardown()
	m.avatar.Teardown()
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		update.TickCmd(),
		m.dispatcher.ListenForCoreEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dispatcher.CoreEventMsg:
		// Handle core events and continue listening
		cmd := update.HandleCoreEvent(&m.shell, msg, m.env)
		if m.shell.SignedOut {
			m.Teardown()
		}
		return m, tea.Batch(cmd, m.dispatcher.ListenForCoreEvents())

	case dispatcher.BusClosedMsg:
		return m, tea.Quit

	case update.OpenDialogMsg:
		return m, m.openDialog(msg)

	case dialog.NoticeMsg:
		return m, update.ShowNotice(&m.shell, msg.Text)

	case tea.KeyMsg:
		if active := m.activeDialog(); active != nil {
			if msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
			return m, active.Update(msg)
		}

	case tea.WindowSizeMsg, update.TickMsg, update.ClearNoticeMsg, update.LanguagesLoadedMsg:
		return m, update.HandleUpdate(&m.shell, msg, m.env)
	}

	if active := m.activeDialog(); active != nil {
		// Settled results, cursor blinks and the like.
		return m, active.Update(msg)
	}
	return m, update.HandleUpdate(&m.shell, msg, m.env)
}

// openDialog opens the requested dialog if none is open. A required password
// prompt takes over from any other dialog instead of being dropped.
func (m *AppModel) openDialog(msg update.OpenDialogMsg) tea.Cmd {
	if active := m.activeDialog(); active != nil {
		if !msg.Required {
			return nil
		}
		if active == profileDialog(m.password) && (m.password.Forced() || !msg.Forced) {
			m.shell.PasswordPrompted = true
			return nil
		}
		active.Teardown()
	}
	m.shell.ShowLanguage = false
	switch msg.Kind {
	case update.DialogPassword:
		if msg.Required {
			m.shell.PasswordPrompted = true
		}
		if msg.Forced {
			return m.password.OpenForced(msg.OldPassword)
		}
		return m.password.Open()
	case update.DialogEmail:
		if m.shell.Identity == nil {
			return nil
		}
		return m.email.Open(m.shell.Identity.Email)
	case update.DialogAvatar:
		if m.shell.Identity == nil {
			return nil
		}
		return m.avatar.Open(m.shell.Identity.ID, m.shell.Identity.AvatarURL)
	}
	return nil
}

func (m *AppModel) View() string {
	t := m.env.Locale.T
	menu := m.env.Menu(&m.shell)

	height := m.shell.Height - 3
	sidebar := components.RenderSidebar(components.SidebarView{
		Identity: m.shell.Identity,
		Entries:  menu,
		Cursor:   m.shell.Cursor,
		View:     m.shell.View,
		Language: m.env.Locale.DisplayName(m.env.Locale.Current()),
		Height:   height,
		T:        t,
	})

	mainWidth := m.shell.Width - lipgloss.Width(sidebar) - 4
	var main string
	switch {
	case m.activeDialog() != nil:
		main = m.activeDialog().View(min(mainWidth, 60))
	case m.shell.ShowLanguage:
		main = components.RenderLanguagePicker(components.LanguagePickerView{
			Languages: m.shell.Languages,
			Loaded:    m.shell.LangLoaded,
			Cursor:    m.shell.LangCursor,
			Current:   m.env.Locale.Current(),
			Width:     mainWidth,
			T:         t,
		})
	default:
		main = m.mainPane(t)
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, styles.MainStyle().Render(main)))
	b.WriteString("\n")
	b.WriteString(components.RenderStatus(m.shell.Status, m.shell.Notice, m.shell.Loading, m.shell.LoadingDots, m.shell.Width))
	b.WriteString("\n")
	b.WriteString(m.helpView(t))
	return b.String()
}

func (m *AppModel) mainPane(t func(string) string) string {
	title := styles.DialogTitleStyle().Render(t("app.title"))
	var label string
	for _, item := range models.DefaultNavItems {
		if item.View == m.shell.View {
			label = t(item.LabelKey)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		styles.LabelStyle().Render(t("app.tagline")),
		"",
		styles.IdentityStyle().Render(label),
	)
}

func (m *AppModel) helpView(t func(string) string) string {
	if m.activeDialog() != nil {
		return ""
	}
	bindings := m.env.Keys.ShortHelp()
	if m.shell.ShowHelp {
		bindings = m.env.Keys.FullHelp()
	}
	entries := make([]components.HelpEntry, 0, len(bindings))
	for _, binding := range bindings {
		if !binding.Enabled() || binding.Help().Key == "" {
			continue
		}
		entries = append(entries, components.HelpEntry{Key: binding.Help().Key, Desc: t(binding.Help().Desc)})
	}
	return components.RenderHelp(entries, false)
}
