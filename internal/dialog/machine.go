// Package dialog implements the profile mutation dialogs: a generic
// open/edit/submit/settle lifecycle and the password, email and avatar forms
// built on it.
package dialog

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Rorical/AgentDesk/internal/apperrors"
)

// Status is where a dialog instance is in its lifecycle.
type Status int

const (
	Closed Status = iota
	Editing
	Submitting
	Errored
	Settled
)

func (s Status) String() string {
	switch s {
	case Closed:
		return "closed"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Errored:
		return "errored"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// FallbackErrorKey is shown when a failure carries no message.
const FallbackErrorKey = "errors.unknown"

// SettledMsg carries the outcome of a submit back into the update loop.
// Instance identifies the dialog instance that issued the submit.
type SettledMsg[R any] struct {
	Instance string
	Result   R
	Err      error
}

// Machine is the lifecycle shared by every mutation dialog. D is the draft
// the form edits, R the result of a successful submit. All methods must be
// called from the update loop; only the command returned by Submit runs
// elsewhere.
type Machine[D any, R any] struct {
	validate  func(D) error
	submit    func(context.Context, D) (R, error)
	translate func(string) string
	onClose   func()

	status   Status
	draft    D
	instance string
	errMsg   string
	forced   bool
}

// NewMachine creates a closed machine. validate may be nil.
func NewMachine[D any, R any](validate func(D) error, submit func(context.Context, D) (R, error)) *Machine[D, R] {
	return &Machine[D, R]{
		validate: validate,
		submit:   submit,
		status:   Closed,
	}
}

// SetTranslator sets the function used to localize error keys.
func (m *Machine[D, R]) SetTranslator(translate func(string) string) {
	m.translate = translate
}

// OnClose registers a hook run every time an open instance closes.
func (m *Machine[D, R]) OnClose(fn func()) {
	m.onClose = fn
}

// Open starts a fresh instance seeded with seed. Any previous instance is
// abandoned; its in-flight result will be ignored.
func (m *Machine[D, R]) Open(seed D) {
	m.open(seed, false)
}

// OpenForced opens an instance that cannot be dismissed until it settles.
func (m *Machine[D, R]) OpenForced(seed D) {
	m.open(seed, true)
}

func (m *Machine[D, R]) open(seed D, forced bool) {
	if m.status != Closed && m.onClose != nil {
		m.onClose()
	}
	m.instance = uuid.NewString()
	m.draft = seed
	m.errMsg = ""
	m.forced = forced
	m.status = Editing
}

// Draft returns the editable draft. It is nil while closed.
func (m *Machine[D, R]) Draft() *D {
	if m.status == Closed {
		return nil
	}
	return &m.draft
}

// Edit acknowledges user input after a failure, clearing the error.
func (m *Machine[D, R]) Edit() {
	if m.status == Errored {
		m.status = Editing
		m.errMsg = ""
	}
}

// Submit validates the draft and, when it passes, returns the one command
// that performs the remote call. While a submit is in flight, or when the
// instance is not editable, Submit does nothing. A validation failure is
// returned and the remote call is never made.
func (m *Machine[D, R]) Submit(ctx context.Context) (tea.Cmd, error) {
	if m.status != Editing && m.status != Errored {
		return nil, nil
	}
	if m.validate != nil {
		if err := m.validate(m.draft); err != nil {
			m.status = Errored
			m.errMsg = apperrors.Describe(err, m.translate, FallbackErrorKey)
			return nil, err
		}
	}

	m.status = Submitting
	m.errMsg = ""
	instance := m.instance
	draft := m.draft
	submit := m.submit
	return func() tea.Msg {
		result, err := submit(ctx, draft)
		return SettledMsg[R]{Instance: instance, Result: result, Err: err}
	}, nil
}

// Settle applies a submit outcome. It reports the result and true only for
// a successful submit of the current instance; results for an instance
// that has since closed or reopened are dropped. A failure keeps the draft
// and moves to Errored.
func (m *Machine[D, R]) Settle(msg SettledMsg[R]) (R, bool) {
	var zero R
	if msg.Instance != m.instance || m.status != Submitting {
		return zero, false
	}
	if msg.Err != nil {
		m.status = Errored
		m.errMsg = apperrors.Describe(msg.Err, m.translate, FallbackErrorKey)
		return zero, false
	}
	m.status = Settled
	return msg.Result, true
}

// Close discards the draft. A forced instance refuses to close until it has
// settled. Close reports whether the instance is now closed.
func (m *Machine[D, R]) Close() bool {
	if m.status == Closed {
		return true
	}
	if m.forced && m.status != Settled {
		return false
	}
	m.shutdown()
	return true
}

// Discard closes the instance regardless of forced mode. It is used when the
// program itself is going away.
func (m *Machine[D, R]) Discard() {
	if m.status != Closed {
		m.shutdown()
	}
}

func (m *Machine[D, R]) shutdown() {
	var zero D
	m.draft = zero
	m.errMsg = ""
	m.forced = false
	m.status = Closed
	m.instance = ""
	if m.onClose != nil {
		m.onClose()
	}
}

// Status returns the current lifecycle state.
func (m *Machine[D, R]) Status() Status {
	return m.status
}

// IsOpen reports whether an instance is showing.
func (m *Machine[D, R]) IsOpen() bool {
	return m.status != Closed
}

// Forced reports whether the open instance cannot be dismissed.
func (m *Machine[D, R]) Forced() bool {
	return m.forced
}

// ErrorMessage is the text shown while Errored.
func (m *Machine[D, R]) ErrorMessage() string {
	return m.errMsg
}

// Instance identifies the open instance; empty while closed.
func (m *Machine[D, R]) Instance() string {
	return m.instance
}
