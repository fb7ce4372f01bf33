package app

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/AgentDesk/internal/dialog"
	"github.com/Rorical/AgentDesk/internal/dispatcher"
	"github.com/Rorical/AgentDesk/internal/eventbus"
	"github.com/Rorical/AgentDesk/internal/gateway"
	"github.com/Rorical/AgentDesk/internal/gateway/gatewaytest"
	"github.com/Rorical/AgentDesk/internal/i18n"
	"github.com/Rorical/AgentDesk/internal/models"
	"github.com/Rorical/AgentDesk/internal/preview"
	"github.com/Rorical/AgentDesk/internal/update"
)

type fixture struct {
	model    *AppModel
	bus      *eventbus.EventBus
	backend  *gatewaytest.Server
	registry *preview.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := gatewaytest.NewServer(gatewaytest.WithToken("tok"))
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	backend.SetPublicURL(srv.URL)

	catalog, err := i18n.LoadEmbedded()
	require.NoError(t, err)
	gw := gateway.NewHTTPGateway(srv.URL, "tok", 5*time.Second)
	locale := i18n.NewStore(catalog, nil, gw)
	locale.Init(func(string) string { return "" })

	bus := eventbus.NewEventBus()
	t.Cleanup(bus.Close)
	disp := dispatcher.NewEventDispatcher(bus)
	t.Cleanup(disp.Stop)

	deps := dialog.Deps{Gateway: gw, T: locale.T, Context: context.Background()}
	registry := preview.NewRegistry()
	agent := backend.Agent()
	model := NewAppModel(
		models.ShellModel{Identity: &agent, View: models.ViewConversations, Width: 100, Height: 30},
		&update.Env{Locale: locale, Publisher: disp},
		disp, deps, dialog.NewAvatarDialog(deps, registry),
	)
	return &fixture{model: model, bus: bus, backend: backend, registry: registry}
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	_, cmd := f.model.Update(msg)
	return cmd
}

func (f *fixture) nextUIEvent(t *testing.T) eventbus.UIEvent {
	t.Helper()
	select {
	case event := <-f.bus.UIToCore():
		return event
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return nil
	}
}

func TestEmailUpdateFlowsBackToCore(t *testing.T) {
	f := newFixture(t)

	f.send(update.OpenDialogMsg{Kind: update.DialogEmail})
	require.True(t, f.model.email.IsOpen())
	assert.Equal(t, "ada@example.com", f.model.email.Value())

	f.model.email.SetValue("grace@example.com")
	submit := f.send(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, submit)

	notice := f.send(submit())
	assert.False(t, f.model.email.IsOpen())
	require.NotNil(t, notice)
	f.send(notice())
	assert.Equal(t, "Email updated", f.model.Shell().Notice)

	email := "grace@example.com"
	assert.Equal(t, eventbus.IdentityUpdatedEvent{Change: models.IdentityChange{Email: &email}}, f.nextUIEvent(t))
}

func TestKeysGoToOpenDialogOnly(t *testing.T) {
	f := newFixture(t)
	f.send(update.OpenDialogMsg{Kind: update.DialogPassword})
	require.True(t, f.model.password.IsOpen())

	// "s" would cycle the status in the shell; here it is typed.
	f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Empty(t, f.model.Shell().Notice)

	f.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, f.model.password.IsOpen())
}

func TestOnlyOneDialogAtATime(t *testing.T) {
	f := newFixture(t)
	f.send(update.OpenDialogMsg{Kind: update.DialogEmail})
	f.send(update.OpenDialogMsg{Kind: update.DialogAvatar})

	assert.True(t, f.model.email.IsOpen())
	assert.False(t, f.model.avatar.IsOpen())
}

func TestForcedPasswordDialogBlocksEscButNotQuit(t *testing.T) {
	f := newFixture(t)
	f.send(update.OpenDialogMsg{Kind: update.DialogPassword, Forced: true, OldPassword: "secret"})
	require.True(t, f.model.password.Forced())

	f.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, f.model.password.IsOpen())

	cmd := f.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRequiredPasswordPromptTakesOverOpenDialog(t *testing.T) {
	f := newFixture(t)
	f.model.env.TemporaryPassword = func() string { return "temp" }
	f.send(update.OpenDialogMsg{Kind: update.DialogEmail})
	require.True(t, f.model.email.IsOpen())

	agent := f.backend.Agent()
	agent.PasswordChangeRequired = true
	event := dispatcher.CoreEventMsg{Event: eventbus.StateUpdateEvent{Identity: &agent}}
	prompt := update.HandleCoreEvent(&f.model.shell, event, f.model.env)
	require.NotNil(t, prompt)
	assert.False(t, f.model.Shell().PasswordPrompted)

	f.send(prompt())

	assert.False(t, f.model.email.IsOpen())
	assert.True(t, f.model.password.IsOpen())
	assert.True(t, f.model.password.Forced())
	assert.True(t, f.model.Shell().PasswordPrompted)
	assert.Nil(t, update.HandleCoreEvent(&f.model.shell, event, f.model.env))
}

func TestRequiredPasswordPromptKeepsOpenPasswordDialog(t *testing.T) {
	f := newFixture(t)
	f.send(update.OpenDialogMsg{Kind: update.DialogPassword})
	instance := f.model.password.Instance()

	f.send(update.OpenDialogMsg{Kind: update.DialogPassword, Required: true})

	assert.True(t, f.model.password.IsOpen())
	assert.Equal(t, instance, f.model.password.Instance())
	assert.True(t, f.model.Shell().PasswordPrompted)
}

func TestSignOutTearsDownDialogsAndPreviews(t *testing.T) {
	f := newFixture(t)
	f.send(update.OpenDialogMsg{Kind: update.DialogAvatar})
	f.model.avatar.SelectFile(preview.File{Name: "a.png", Content: []byte("\x89PNG\r\n\x1a\n"), ContentType: "image/png"})
	require.Equal(t, 1, f.registry.Live())

	f.send(dispatcher.CoreEventMsg{Event: eventbus.StateUpdateEvent{SignedOut: true}})

	assert.False(t, f.model.avatar.IsOpen())
	assert.Zero(t, f.registry.Live())
	assert.True(t, f.model.Shell().SignedOut)
}

func TestShellKeysWithoutDialog(t *testing.T) {
	f := newFixture(t)
	f.send(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, f.model.Shell().Cursor)

	cmd := f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.NotNil(t, cmd)
	f.send(cmd())
	assert.True(t, f.model.email.IsOpen())
}

func TestViewRendersIdentityAndDialog(t *testing.T) {
	f := newFixture(t)
	view := f.model.View()
	assert.Contains(t, view, "Ada Lovelace")
	assert.Contains(t, view, "Conversations")

	f.send(update.OpenDialogMsg{Kind: update.DialogEmail})
	assert.Contains(t, f.model.View(), "Update email")
}

func TestBusClosedQuits(t *testing.T) {
	f := newFixture(t)
	cmd := f.send(dispatcher.BusClosedMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
