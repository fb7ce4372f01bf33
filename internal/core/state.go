package core

import (
	"sync"

	"github.com/Rorical/AgentDesk/internal/models"
)

// SessionState is the core's record of the signed-in agent. It is the single
// source of truth; the UI only ever sees copies.
type SessionState struct {
	mu        sync.RWMutex
	identity  *models.AgentIdentity
	loading   bool
	signedOut bool
	lastError error
	view      models.View
}

func NewSessionState() *SessionState {
	return &SessionState{view: models.ViewConversations}
}

// GetIdentity returns a copy of the identity, or nil when signed out.
func (ss *SessionState) GetIdentity() *models.AgentIdentity {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	if ss.identity == nil {
		return nil
	}
	identity := *ss.identity
	return &identity
}

func (ss *SessionState) IsLoading() bool {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.loading
}

func (ss *SessionState) IsSignedOut() bool {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.signedOut
}

func (ss *SessionState) GetLastError() error {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.lastError
}

func (ss *SessionState) ClearError() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.lastError = nil
}

func (ss *SessionState) GetView() models.View {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.view
}

func (ss *SessionState) SetView(view models.View) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.view = view
}

// Atomic operations for event ordering
func (ss *SessionState) StartLoading() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.loading = true
	ss.lastError = nil
}

func (ss *SessionState) FinishLoadingWithIdentity(identity models.AgentIdentity) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.loading = false
	ss.lastError = nil
	ss.signedOut = false
	ss.identity = &identity
}

func (ss *SessionState) FinishLoadingWithError(err error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.loading = false
	ss.lastError = err
	ss.identity = nil
}

// MergeIdentity applies a settled dialog's change. It reports false when
// there is no identity to merge into.
func (ss *SessionState) MergeIdentity(change models.IdentityChange) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.identity == nil {
		return false
	}
	merged := change.Apply(*ss.identity)
	ss.identity = &merged
	return true
}

// SetAvailability replaces the availability and returns the previous one.
func (ss *SessionState) SetAvailability(availability models.Availability) (models.Availability, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.identity == nil {
		return "", false
	}
	previous := ss.identity.Availability
	ss.identity.Availability = availability
	return previous, true
}

func (ss *SessionState) SetError(err error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.lastError = err
}

func (ss *SessionState) ClearPasswordChangeRequired() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.identity != nil {
		ss.identity.PasswordChangeRequired = false
	}
}

func (ss *SessionState) SignOut() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.identity = nil
	ss.loading = false
	ss.signedOut = true
	ss.lastError = nil
}
