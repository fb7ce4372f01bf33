package dialog

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/AgentDesk/internal/apperrors"
	"github.com/Rorical/AgentDesk/ui/components"
)

// PasswordDraft is the password form.
type PasswordDraft struct {
	Old     string
	New     string
	Confirm string
}

// Done is the result of a mutation that returns nothing.
type Done struct{}

const (
	passwordOld = iota
	passwordNew
	passwordConfirm
)

// ValidatePassword requires every field and a matching confirmation.
func ValidatePassword(d PasswordDraft) error {
	if d.Old == "" || d.New == "" || d.Confirm == "" {
		return apperrors.Validation(apperrors.ReasonFieldRequired, "errors.field_required")
	}
	if d.New != d.Confirm {
		return apperrors.Validation(apperrors.ReasonPasswordMismatch, "errors.password_mismatch")
	}
	return nil
}

// PasswordDialog changes the agent's password. In forced mode (temporary
// password flow) the current password is known, its field is hidden, and
// the dialog cannot be dismissed until the change succeeds.
type PasswordDialog struct {
	deps     Deps
	machine  *Machine[PasswordDraft, Done]
	form     form
	knownOld string

	// OnSuccess runs once per successful change, after the dialog closes.
	OnSuccess func()
}

func NewPasswordDialog(deps Deps) *PasswordDialog {
	deps = deps.withDefaults()
	d := &PasswordDialog{deps: deps}
	d.machine = NewMachine(ValidatePassword, func(ctx context.Context, draft PasswordDraft) (Done, error) {
		return Done{}, deps.Gateway.ChangePassword(ctx, draft.Old, draft.New)
	})
	d.machine.SetTranslator(deps.T)
	d.machine.OnClose(func() {
		d.form.reset()
		d.knownOld = ""
	})
	d.form.fields = []field{
		newField("dialog.password.old", true),
		newField("dialog.password.new", true),
		newField("dialog.password.confirm", true),
	}
	return d
}

// Open shows the dialog with empty fields.
func (d *PasswordDialog) Open() tea.Cmd {
	d.machine.Open(PasswordDraft{})
	d.form.reset()
	return d.form.show(passwordOld, passwordNew, passwordConfirm)
}

// OpenForced shows the dialog for a temporary password the shell already
// knows.
func (d *PasswordDialog) OpenForced(oldPassword string) tea.Cmd {
	d.machine.OpenForced(PasswordDraft{Old: oldPassword})
	d.form.reset()
	d.knownOld = oldPassword
	return d.form.show(passwordNew, passwordConfirm)
}

func (d *PasswordDialog) IsOpen() bool { return d.machine.IsOpen() }

func (d *PasswordDialog) Forced() bool { return d.machine.Forced() }

func (d *PasswordDialog) Status() Status { return d.machine.Status() }

func (d *PasswordDialog) Error() string { return d.machine.ErrorMessage() }

func (d *PasswordDialog) Instance() string { return d.machine.Instance() }

// Close dismisses the dialog unless it is forced.
func (d *PasswordDialog) Close() bool {
	return d.machine.Close()
}

// Teardown closes the dialog unconditionally.
func (d *PasswordDialog) Teardown() {
	d.machine.Discard()
}

// Submit copies the fields into the draft and submits it.
func (d *PasswordDialog) Submit() (tea.Cmd, error) {
	draft := d.machine.Draft()
	if draft == nil {
		return nil, nil
	}
	draft.Old = d.form.value(passwordOld)
	if d.machine.Forced() {
		draft.Old = d.knownOld
	}
	draft.New = d.form.value(passwordNew)
	draft.Confirm = d.form.value(passwordConfirm)
	return d.machine.Submit(d.deps.Context)
}

// Update handles input while the dialog is open.
func (d *PasswordDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.machine.IsOpen() {
		return nil
	}
	switch msg := msg.(type) {
	case SettledMsg[Done]:
		if _, ok := d.machine.Settle(msg); !ok {
			return nil
		}
		d.machine.Close()
		if d.OnSuccess != nil {
			d.OnSuccess()
		}
		return notify(d.deps.T("dialog.password.success"))

	case tea.KeyMsg:
		keys := d.deps.Keys
		if key.Matches(msg, keys.Close) {
			d.machine.Close()
			return nil
		}
		if d.machine.Status() == Submitting {
			return nil
		}
		switch {
		case key.Matches(msg, keys.Submit):
			cmd, _ := d.Submit()
			return cmd
		case key.Matches(msg, keys.Enter):
			if d.form.onLast() {
				cmd, _ := d.Submit()
				return cmd
			}
			return d.form.next()
		case key.Matches(msg, keys.Next):
			return d.form.next()
		case key.Matches(msg, keys.Prev):
			return d.form.prev()
		}
		d.machine.Edit()
		return d.form.update(msg)
	}
	return nil
}

func (d *PasswordDialog) View(width int) string {
	if !d.machine.IsOpen() {
		return ""
	}
	t := d.deps.T
	view := components.DialogView{
		Title: t("dialog.password.title"),
		Rows:  d.form.rows(t),
		Error: d.machine.ErrorMessage(),
		Width: width,
	}
	keys := *d.deps.Keys
	if d.machine.Forced() {
		view.Intro = t("dialog.password.forced")
		keys.Close.SetEnabled(false)
	}
	if d.machine.Status() == Submitting {
		view.Busy = t("dialog.submitting")
	}
	view.Footer = strings.TrimSpace(helpLine(t, keys.Next, keys.Submit, keys.Close))
	return components.RenderDialog(view)
}
