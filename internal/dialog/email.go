package dialog

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/AgentDesk/internal/apperrors"
	"github.com/Rorical/AgentDesk/internal/gateway"
	"github.com/Rorical/AgentDesk/ui/components"
)

// ValidateEmail only requires a value; the server judges the format.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.Validation(apperrors.ReasonFieldRequired, "errors.field_required")
	}
	return nil
}

// EmailDialog updates the agent's email address.
type EmailDialog struct {
	deps    Deps
	machine *Machine[string, string]
	form    form

	// OnSuccess receives the new address once per successful update.
	OnSuccess func(email string)
}

func NewEmailDialog(deps Deps) *EmailDialog {
	deps = deps.withDefaults()
	d := &EmailDialog{deps: deps}
	d.machine = NewMachine(ValidateEmail, func(ctx context.Context, email string) (string, error) {
		email = strings.TrimSpace(email)
		agent, err := deps.Gateway.UpdateProfile(ctx, gateway.ProfileFields{Email: gateway.String(email)})
		if err != nil {
			return "", err
		}
		if agent.Email != "" {
			return agent.Email, nil
		}
		return email, nil
	})
	d.machine.SetTranslator(deps.T)
	d.machine.OnClose(d.form.reset)
	d.form.fields = []field{newField("dialog.email.field", false)}
	return d
}

// Open shows the dialog seeded with the current address.
func (d *EmailDialog) Open(currentEmail string) tea.Cmd {
	d.machine.Open(currentEmail)
	d.form.reset()
	d.form.set(0, currentEmail)
	d.form.fields[0].input.CursorEnd()
	return d.form.show(0)
}

func (d *EmailDialog) IsOpen() bool { return d.machine.IsOpen() }

func (d *EmailDialog) Status() Status { return d.machine.Status() }

func (d *EmailDialog) Error() string { return d.machine.ErrorMessage() }

func (d *EmailDialog) Instance() string { return d.machine.Instance() }

// Value is the address currently in the field.
func (d *EmailDialog) Value() string {
	return d.form.value(0)
}

// SetValue replaces the field content.
func (d *EmailDialog) SetValue(email string) {
	d.form.set(0, email)
	d.machine.Edit()
}

func (d *EmailDialog) Close() bool {
	return d.machine.Close()
}

func (d *EmailDialog) Teardown() {
	d.machine.Discard()
}

func (d *EmailDialog) Submit() (tea.Cmd, error) {
	draft := d.machine.Draft()
	if draft == nil {
		return nil, nil
	}
	*draft = d.form.value(0)
	return d.machine.Submit(d.deps.Context)
}

func (d *EmailDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.machine.IsOpen() {
		return nil
	}
	switch msg := msg.(type) {
	case SettledMsg[string]:
		email, ok := d.machine.Settle(msg)
		if !ok {
			return nil
		}
		d.machine.Close()
		if d.OnSuccess != nil {
			d.OnSuccess(email)
		}
		return notify(d.deps.T("dialog.email.success"))

	case tea.KeyMsg:
		keys := d.deps.Keys
		if key.Matches(msg, keys.Close) {
			d.machine.Close()
			return nil
		}
		if d.machine.Status() == Submitting {
			return nil
		}
		if key.Matches(msg, keys.Submit) || key.Matches(msg, keys.Enter) {
			cmd, _ := d.Submit()
			return cmd
		}
		d.machine.Edit()
		return d.form.update(msg)
	}
	return nil
}

func (d *EmailDialog) View(width int) string {
	if !d.machine.IsOpen() {
		return ""
	}
	t := d.deps.T
	view := components.DialogView{
		Title:  t("dialog.email.title"),
		Rows:   d.form.rows(t),
		Error:  d.machine.ErrorMessage(),
		Footer: helpLine(t, d.deps.Keys.Submit, d.deps.Keys.Close),
		Width:  width,
	}
	if d.machine.Status() == Submitting {
		view.Busy = t("dialog.submitting")
	}
	return components.RenderDialog(view)
}
