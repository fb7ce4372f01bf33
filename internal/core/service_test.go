package core

import (
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/AgentDesk/internal/apperrors"
	"github.com/Rorical/AgentDesk/internal/eventbus"
	"github.com/Rorical/AgentDesk/internal/gateway"
	"github.com/Rorical/AgentDesk/internal/gateway/gatewaytest"
	"github.com/Rorical/AgentDesk/internal/models"
	"github.com/Rorical/AgentDesk/internal/storage"
)

type memoryPrefs struct {
	mu     sync.Mutex
	values map[string]string
}

func (p *memoryPrefs) SetPreference(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.values == nil {
		p.values = map[string]string{}
	}
	p.values[key] = value
	return nil
}

func (p *memoryPrefs) get(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[key]
}

type fakeCredentials struct {
	cleared chan struct{}
}

func (c *fakeCredentials) ClearTemporaryPassword() error {
	close(c.cleared)
	return nil
}

type harness struct {
	bus     *eventbus.EventBus
	backend *gatewaytest.Server
	service *SessionService
	prefs   *memoryPrefs
}

func startHarness(t *testing.T, opts Options, backendOpts ...gatewaytest.Option) *harness {
	t.Helper()
	backend := gatewaytest.NewServer(append([]gatewaytest.Option{gatewaytest.WithToken("tok")}, backendOpts...)...)
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	backend.SetPublicURL(srv.URL)

	prefs := &memoryPrefs{}
	if opts.Preferences == nil {
		opts.Preferences = prefs
	}
	bus := eventbus.NewEventBus()
	service := NewSessionService(gateway.NewHTTPGateway(srv.URL, "tok", 5*time.Second), bus, opts)
	service.Start()
	t.Cleanup(service.Stop)
	return &harness{bus: bus, backend: backend, service: service, prefs: prefs}
}

func (h *harness) next(t *testing.T) eventbus.StateUpdateEvent {
	t.Helper()
	select {
	case event := <-h.bus.CoreToUI():
		update, ok := event.(eventbus.StateUpdateEvent)
		require.True(t, ok)
		return update
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for state update")
		return eventbus.StateUpdateEvent{}
	}
}

// signedIn drains the loading and loaded updates.
func (h *harness) signedIn(t *testing.T) models.AgentIdentity {
	t.Helper()
	loading := h.next(t)
	require.True(t, loading.Loading)
	loaded := h.next(t)
	require.NoError(t, loaded.Error)
	require.NotNil(t, loaded.Identity)
	return *loaded.Identity
}

func TestStartLoadsCurrentAgent(t *testing.T) {
	h := startHarness(t, Options{})

	identity := h.signedIn(t)

	assert.Equal(t, "agent-1", identity.ID)
	assert.Equal(t, "ada@example.com", identity.Email)
}

func TestStartFailureLeavesSignedOutWithError(t *testing.T) {
	backend := gatewaytest.NewServer(gatewaytest.WithToken("other"))
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()
	bus := eventbus.NewEventBus()
	service := NewSessionService(gateway.NewHTTPGateway(srv.URL, "tok", time.Second), bus, Options{})
	service.Start()
	defer service.Stop()

	<-bus.CoreToUI()
	update := (<-bus.CoreToUI()).(eventbus.StateUpdateEvent)

	assert.Nil(t, update.Identity)
	assert.False(t, update.Loading)
	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(update.Error))
}

func TestIdentityUpdateIsMerged(t *testing.T) {
	h := startHarness(t, Options{})
	before := h.signedIn(t)
	email := "b@x.com"

	require.NoError(t, h.bus.SendToCore(eventbus.IdentityUpdatedEvent{Change: models.IdentityChange{Email: &email}}))
	update := h.next(t)

	require.NotNil(t, update.Identity)
	assert.Equal(t, "b@x.com", update.Identity.Email)
	assert.Equal(t, before.Name, update.Identity.Name)
}

func TestLanguageChangeIsMerged(t *testing.T) {
	h := startHarness(t, Options{})
	h.signedIn(t)

	require.NoError(t, h.bus.SendToCore(eventbus.LanguageChangeEvent{Code: "fr"}))

	assert.Equal(t, "fr", h.next(t).Identity.Language)
}

func TestStatusChangeIsPushedToBackend(t *testing.T) {
	h := startHarness(t, Options{})
	h.signedIn(t)

	require.NoError(t, h.bus.SendToCore(eventbus.StatusChangeEvent{Availability: models.Busy}))
	update := h.next(t)

	assert.Equal(t, models.Busy, update.Identity.Availability)
	require.Eventually(t, func() bool {
		return h.backend.Agent().Availability == models.Busy
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStatusChangeRollsBackOnFailure(t *testing.T) {
	h := startHarness(t, Options{})
	h.signedIn(t)
	h.backend.FailNext(gatewaytest.OpUpdateProfile, 500, "status unavailable")

	require.NoError(t, h.bus.SendToCore(eventbus.StatusChangeEvent{Availability: models.Offline}))
	optimistic := h.next(t)
	rolledBack := h.next(t)

	assert.Equal(t, models.Offline, optimistic.Identity.Availability)
	assert.Equal(t, models.Online, rolledBack.Identity.Availability)
	assert.Equal(t, "status unavailable", apperrors.MessageOf(rolledBack.Error))
}

func TestViewChangeIsPersisted(t *testing.T) {
	h := startHarness(t, Options{})
	h.signedIn(t)

	require.NoError(t, h.bus.SendToCore(eventbus.ViewChangeEvent{View: models.ViewReports}))

	require.Eventually(t, func() bool {
		return h.prefs.get(storage.KeyView) == string(models.ViewReports)
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, models.ViewReports, h.service.State().GetView())
}

func TestPasswordChangedClearsTemporaryPassword(t *testing.T) {
	creds := &fakeCredentials{cleared: make(chan struct{})}
	agent := models.AgentIdentity{ID: "agent-9", Name: "Grace", Email: "g@x.com", PasswordChangeRequired: true}
	h := startHarness(t, Options{Credentials: creds}, gatewaytest.WithAgent(agent, "temp"))
	require.True(t, h.signedIn(t).PasswordChangeRequired)

	require.NoError(t, h.bus.SendToCore(eventbus.PasswordChangedEvent{}))
	update := h.next(t)

	assert.False(t, update.Identity.PasswordChangeRequired)
	select {
	case <-creds.cleared:
	case <-time.After(5 * time.Second):
		t.Fatal("temporary password not cleared")
	}
}

func TestLogoutEndsSession(t *testing.T) {
	h := startHarness(t, Options{})
	h.signedIn(t)

	require.NoError(t, h.bus.SendToCore(eventbus.LogoutRequestedEvent{}))
	update := h.next(t)

	assert.True(t, update.SignedOut)
	assert.Nil(t, update.Identity)

	email := "late@x.com"
	require.NoError(t, h.bus.SendToCore(eventbus.IdentityUpdatedEvent{Change: models.IdentityChange{Email: &email}}))
	select {
	case event := <-h.bus.CoreToUI():
		t.Fatalf("unexpected event after logout: %#v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMergeWithoutIdentityIsRejected(t *testing.T) {
	state := NewSessionState()
	email := "x@x.com"

	assert.False(t, state.MergeIdentity(models.IdentityChange{Email: &email}))
	_, ok := state.SetAvailability(models.Busy)
	assert.False(t, ok)
}

func TestStateCopiesIdentity(t *testing.T) {
	state := NewSessionState()
	state.FinishLoadingWithIdentity(models.AgentIdentity{ID: "a", Email: "a@x.com"})

	snapshot := state.GetIdentity()
	snapshot.Email = "mutated"

	assert.Equal(t, "a@x.com", state.GetIdentity().Email)
	state.FinishLoadingWithError(errors.New("boom"))
	assert.Nil(t, state.GetIdentity())
}
