package update

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/AgentDesk/internal/apperrors"
	"github.com/Rorical/AgentDesk/internal/dialog"
	"github.com/Rorical/AgentDesk/internal/dispatcher"
	"github.com/Rorical/AgentDesk/internal/eventbus"
	"github.com/Rorical/AgentDesk/internal/i18n"
	"github.com/Rorical/AgentDesk/internal/logging"
	"github.com/Rorical/AgentDesk/internal/models"
)

// NoticeDuration is how long a success notice stays in the status bar.
const NoticeDuration = 3 * time.Second

// Publisher forwards UI events to the core.
type Publisher interface {
	Publish(event eventbus.UIEvent) error
}

// Env is what the shell handlers need besides the model itself.
type Env struct {
	Locale    *i18n.Store
	Publisher Publisher
	// Can reports whether the host grants a navigation permission. Nil
	// allows everything.
	Can      func(permission string) bool
	Embedded bool
	// TemporaryPassword returns the administrator-issued password, if any.
	TemporaryPassword func() string
	Context           context.Context
	Keys              *KeyMap
	Logger            *slog.Logger
}

func (env *Env) t(key string) string {
	if env.Locale == nil {
		return key
	}
	return env.Locale.T(key)
}

func (env *Env) keys() *KeyMap {
	if env.Keys == nil {
		keys := DefaultKeyMap
		env.Keys = &keys
	}
	return env.Keys
}

func (env *Env) logger() *slog.Logger {
	if env.Logger == nil {
		env.Logger = logging.Discard()
	}
	return env.Logger
}

func (env *Env) publish(appModel *models.ShellModel, event eventbus.UIEvent) bool {
	if env.Publisher == nil {
		return false
	}
	if err := env.Publisher.Publish(event); err != nil {
		env.logger().Error("publishing event", "event", fmt.Sprintf("%T", event), "error", err)
		appModel.Status = apperrors.Describe(err, env.t, dialog.FallbackErrorKey)
		return false
	}
	return true
}

// Menu lists the sidebar entries for the current session.
func (env *Env) Menu(appModel *models.ShellModel) []models.MenuEntry {
	return models.BuildMenu(env.Can, env.Embedded, appModel.Identity != nil)
}

// DialogKind names one of the profile dialogs.
type DialogKind int

const (
	DialogPassword DialogKind = iota
	DialogEmail
	DialogAvatar
)

// OpenDialogMsg asks the application to open a profile dialog.
type OpenDialogMsg struct {
	Kind DialogKind
	// Forced opens the password dialog in mandatory mode with OldPassword.
	Forced      bool
	OldPassword string
	// Required marks the prompt for a mandatory password change. It replaces
	// any open dialog, and the shell records it as prompted once it opens.
	Required bool
}

func openDialog(msg OpenDialogMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// ClearNoticeMsg expires the notice with the matching ID.
type ClearNoticeMsg struct {
	ID int
}

// LanguagesLoadedMsg delivers the supported-language list.
type LanguagesLoadedMsg struct {
	Languages []models.Language
}

// LoadLanguagesCmd fetches the supported languages off the UI goroutine.
func LoadLanguagesCmd(ctx context.Context, locale *i18n.Store) tea.Cmd {
	return func() tea.Msg {
		return LanguagesLoadedMsg{Languages: locale.ListSupportedLanguages(ctx)}
	}
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func HandleWindowSizeMsg(appModel *models.ShellModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
}

func HandleTickMsg(appModel *models.ShellModel) tea.Cmd {
	if appModel.Loading {
		appModel.LoadingDots = (appModel.LoadingDots + 1) % 4
	}
	return TickCmd()
}

// ShowNotice displays text and schedules its removal. A newer notice is
// never cleared by an older timer.
func ShowNotice(appModel *models.ShellModel, text string) tea.Cmd {
	appModel.NoticeID++
	appModel.Notice = text
	id := appModel.NoticeID
	return tea.Tick(NoticeDuration, func(time.Time) tea.Msg {
		return ClearNoticeMsg{ID: id}
	})
}

func HandleClearNotice(appModel *models.ShellModel, msg ClearNoticeMsg) {
	if msg.ID == appModel.NoticeID {
		appModel.Notice = ""
	}
}

// HandleCoreEvent applies session state pushed by the core.
func HandleCoreEvent(appModel *models.ShellModel, coreEventMsg dispatcher.CoreEventMsg, env *Env) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.Identity = event.Identity
		appModel.Loading = event.Loading
		appModel.SignedOut = event.SignedOut
		clampCursor(appModel, env)

		switch {
		case event.Error != nil:
			appModel.Status = apperrors.Describe(event.Error, env.t, dialog.FallbackErrorKey)
		case event.Loading:
			appModel.Status = env.t("status.loading")
		case event.SignedOut:
			appModel.Status = env.t("status.signed_out")
		case event.Identity == nil:
			appModel.Status = env.t("status.not_signed_in")
		default:
			appModel.Status = env.t("status.ready")
		}

		if event.SignedOut {
			return tea.Quit
		}
		if event.Identity != nil && event.Identity.PasswordChangeRequired && !appModel.PasswordPrompted {
			msg := OpenDialogMsg{Kind: DialogPassword, Required: true}
			if env.TemporaryPassword != nil {
				if old := env.TemporaryPassword(); old != "" {
					msg.Forced = true
					msg.OldPassword = old
				}
			}
			return openDialog(msg)
		}
	}
	return nil
}

// HandleLanguagesLoaded fills the picker, keeping the cursor on the current
// language when it is listed.
func HandleLanguagesLoaded(appModel *models.ShellModel, msg LanguagesLoadedMsg) {
	appModel.Languages = msg.Languages
	appModel.LangLoaded = true
	appModel.LangCursor = 0
	for i, lang := range msg.Languages {
		if lang.Code == appModel.Language {
			appModel.LangCursor = i
			break
		}
	}
}

// HandleKeyMsg handles keys while no dialog is open.
func HandleKeyMsg(appModel *models.ShellModel, keyMsg tea.KeyMsg, env *Env) tea.Cmd {
	keys := env.keys()
	if key.Matches(keyMsg, keys.Quit) {
		return tea.Quit
	}
	if appModel.ShowLanguage {
		return handleLanguageKey(appModel, keyMsg, env)
	}

	menu := env.Menu(appModel)
	switch {
	case key.Matches(keyMsg, keys.Up):
		if appModel.Cursor > 0 {
			appModel.Cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if appModel.Cursor < len(menu)-1 {
			appModel.Cursor++
		}
	case key.Matches(keyMsg, keys.Select):
		if appModel.Cursor < len(menu) {
			return Activate(appModel, menu[appModel.Cursor], env)
		}
	case key.Matches(keyMsg, keys.Help):
		appModel.ShowHelp = !appModel.ShowHelp
	case key.Matches(keyMsg, keys.Language):
		return activateAction(appModel, menu, models.ActionLanguage, env)
	case key.Matches(keyMsg, keys.Status):
		return activateAction(appModel, menu, models.ActionStatus, env)
	case key.Matches(keyMsg, keys.Password):
		return activateAction(appModel, menu, models.ActionPassword, env)
	case key.Matches(keyMsg, keys.Email):
		return activateAction(appModel, menu, models.ActionEmail, env)
	case key.Matches(keyMsg, keys.Avatar):
		return activateAction(appModel, menu, models.ActionAvatar, env)
	case key.Matches(keyMsg, keys.Logout):
		return activateAction(appModel, menu, models.ActionLogout, env)
	}
	return nil
}

// activateAction runs a shortcut only when the menu offers the action.
func activateAction(appModel *models.ShellModel, menu []models.MenuEntry, action models.MenuAction, env *Env) tea.Cmd {
	for _, entry := range menu {
		if entry.Action == action {
			return Activate(appModel, entry, env)
		}
	}
	return nil
}

// Activate performs a sidebar entry.
func Activate(appModel *models.ShellModel, entry models.MenuEntry, env *Env) tea.Cmd {
	switch entry.Action {
	case models.ActionNavigate:
		if appModel.View == entry.View {
			return nil
		}
		appModel.View = entry.View
		env.publish(appModel, eventbus.ViewChangeEvent{View: entry.View})

	case models.ActionStatus:
		if appModel.Identity == nil {
			return nil
		}
		next := appModel.Identity.Availability.Next()
		if !env.publish(appModel, eventbus.StatusChangeEvent{Availability: next}) {
			return nil
		}
		return ShowNotice(appModel, fmt.Sprintf(env.t("status.changed"), env.t("status."+string(next))))

	case models.ActionLanguage:
		appModel.ShowLanguage = true
		// An empty list means the last fetch failed; the store retries.
		if (appModel.LangLoaded && len(appModel.Languages) > 0) || env.Locale == nil {
			return nil
		}
		appModel.LangLoaded = false
		return LoadLanguagesCmd(env.context(), env.Locale)

	case models.ActionPassword:
		return openDialog(OpenDialogMsg{Kind: DialogPassword})

	case models.ActionEmail:
		if appModel.Identity == nil {
			return nil
		}
		return openDialog(OpenDialogMsg{Kind: DialogEmail})

	case models.ActionAvatar:
		if appModel.Identity == nil {
			return nil
		}
		return openDialog(OpenDialogMsg{Kind: DialogAvatar})

	case models.ActionSwitchAgent:
		appModel.SwitchRequested = true
		return tea.Quit

	case models.ActionLogout:
		env.publish(appModel, eventbus.LogoutRequestedEvent{})
	}
	return nil
}

func handleLanguageKey(appModel *models.ShellModel, keyMsg tea.KeyMsg, env *Env) tea.Cmd {
	keys := env.keys()
	switch {
	case key.Matches(keyMsg, keys.Back):
		appModel.ShowLanguage = false
	case key.Matches(keyMsg, keys.Up):
		if appModel.LangCursor > 0 {
			appModel.LangCursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if appModel.LangCursor < len(appModel.Languages)-1 {
			appModel.LangCursor++
		}
	case key.Matches(keyMsg, keys.Select):
		if !appModel.LangLoaded || appModel.LangCursor >= len(appModel.Languages) {
			return nil
		}
		return SelectLanguage(appModel, appModel.Languages[appModel.LangCursor].Code, env)
	}
	return nil
}

// SelectLanguage switches the UI language. The switch is local and
// immediate; the backend preference follows in the background.
func SelectLanguage(appModel *models.ShellModel, code string, env *Env) tea.Cmd {
	applied, err := env.Locale.SetLanguage(code, appModel.Identity)
	if err != nil {
		appModel.Status = apperrors.Describe(err, env.t, dialog.FallbackErrorKey)
		return nil
	}
	appModel.Language = applied
	appModel.ShowLanguage = false
	if appModel.Identity != nil {
		env.publish(appModel, eventbus.LanguageChangeEvent{Code: applied})
	}
	return ShowNotice(appModel, env.t("language.changed"))
}

func (env *Env) context() context.Context {
	if env.Context == nil {
		return context.Background()
	}
	return env.Context
}

func clampCursor(appModel *models.ShellModel, env *Env) {
	if n := len(env.Menu(appModel)); appModel.Cursor >= n {
		appModel.Cursor = max(n-1, 0)
	}
}
