package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/Rorical/AgentDesk/internal/eventbus"
	"github.com/Rorical/AgentDesk/internal/gateway"
	"github.com/Rorical/AgentDesk/internal/logging"
	"github.com/Rorical/AgentDesk/internal/models"
	"github.com/Rorical/AgentDesk/internal/storage"
)

// Preferences records client-local session choices.
type Preferences interface {
	SetPreference(key, value string) error
}

// Credentials forgets a temporary password once it has been replaced.
type Credentials interface {
	ClearTemporaryPassword() error
}

// Options are the optional collaborators of a SessionService.
type Options struct {
	Preferences    Preferences
	Credentials    Credentials
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// SessionService owns the signed-in agent. It loads the identity, merges the
// changes dialogs report, pushes availability to the backend and ends the
// session on logout. It runs on its own goroutine and talks to the UI only
// through the event bus.
type SessionService struct {
	gateway  gateway.Gateway
	state    *SessionState
	eventBus *eventbus.EventBus
	opts     Options
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	done     chan struct{}
}

func NewSessionService(gw gateway.Gateway, eb *eventbus.EventBus, opts Options) *SessionService {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionService{
		gateway:  gw,
		state:    NewSessionState(),
		eventBus: eb,
		opts:     opts,
		logger:   opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start loads the current agent and then processes UI events until Stop.
func (ss *SessionService) Start() {
	ss.started = true
	ss.state.StartLoading()
	ss.pushStateToUI()
	go func() {
		defer close(ss.done)
		ss.loadIdentity()
		ss.eventLoop()
	}()
}

// Stop ends the event loop and waits for it.
func (ss *SessionService) Stop() {
	ss.cancel()
	if ss.started {
		<-ss.done
	}
}

// State exposes the session state for inspection.
func (ss *SessionService) State() *SessionState {
	return ss.state
}

func (ss *SessionService) loadIdentity() {
	ctx, cancel := context.WithTimeout(ss.ctx, ss.opts.RequestTimeout)
	defer cancel()

	identity, err := ss.gateway.CurrentAgent(ctx)
	if err != nil {
		ss.logger.Warn("loading current agent", "error", err)
		ss.state.FinishLoadingWithError(err)
	} else {
		ss.logger.Info("signed in", "agent", identity.ID)
		ss.state.FinishLoadingWithIdentity(identity)
	}
	ss.pushStateToUI()
}

func (ss *SessionService) eventLoop() {
	for {
		select {
		case <-ss.ctx.Done():
			return
		case event, ok := <-ss.eventBus.UIToCore():
			if !ok {
				return
			}
			ss.handleUIEvent(event)
		}
	}
}

func (ss *SessionService) handleUIEvent(event eventbus.UIEvent) {
	if ss.state.IsSignedOut() {
		ss.logger.Debug("ignoring event after logout", "event", event)
		return
	}
	switch e := event.(type) {
	case eventbus.IdentityUpdatedEvent:
		ss.mergeIdentity(e.Change)
	case eventbus.LanguageChangeEvent:
		code := e.Code
		ss.mergeIdentity(models.IdentityChange{Language: &code})
	case eventbus.StatusChangeEvent:
		ss.changeAvailability(e.Availability)
	case eventbus.ViewChangeEvent:
		ss.changeView(e.View)
	case eventbus.PasswordChangedEvent:
		ss.passwordChanged()
	case eventbus.LogoutRequestedEvent:
		ss.logout()
	}
}

func (ss *SessionService) mergeIdentity(change models.IdentityChange) {
	if !ss.state.MergeIdentity(change) {
		ss.logger.Warn("identity change without a session")
		return
	}
	ss.pushStateToUI()
}

// changeAvailability applies the new status locally first and rolls it back
// if the backend refuses it.
func (ss *SessionService) changeAvailability(availability models.Availability) {
	previous, ok := ss.state.SetAvailability(availability)
	if !ok {
		return
	}
	ss.state.ClearError()
	ss.pushStateToUI()

	ctx, cancel := context.WithTimeout(ss.ctx, ss.opts.RequestTimeout)
	defer cancel()
	if _, err := ss.gateway.UpdateProfile(ctx, gateway.ProfileFields{Availability: &availability}); err != nil {
		ss.logger.Warn("updating availability", "availability", availability, "error", err)
		ss.state.SetAvailability(previous)
		ss.state.SetError(err)
		ss.pushStateToUI()
		return
	}
	ss.logger.Info("availability changed", "availability", availability)
}

func (ss *SessionService) changeView(view models.View) {
	ss.state.SetView(view)
	if ss.opts.Preferences == nil {
		return
	}
	if err := ss.opts.Preferences.SetPreference(storage.KeyView, string(view)); err != nil {
		ss.logger.Warn("persisting view", "view", view, "error", err)
	}
}

func (ss *SessionService) passwordChanged() {
	ss.state.ClearPasswordChangeRequired()
	if ss.opts.Credentials != nil {
		if err := ss.opts.Credentials.ClearTemporaryPassword(); err != nil {
			ss.logger.Warn("clearing temporary password", "error", err)
		}
	}
	ss.pushStateToUI()
}

func (ss *SessionService) logout() {
	ss.logger.Info("logged out")
	ss.state.SignOut()
	ss.pushStateToUI()
}

func (ss *SessionService) pushStateToUI() {
	if err := ss.eventBus.SendToUI(eventbus.StateUpdateEvent{
		Identity:  ss.state.GetIdentity(),
		Loading:   ss.state.IsLoading(),
		SignedOut: ss.state.IsSignedOut(),
		Error:     ss.state.GetLastError(),
	}); err != nil {
		// The UI drains the channel continuously; a failure here means it is
		// gone or wedged.
		ss.logger.Error("sending state to UI", "error", err)
	}
}
