package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/AgentDesk/internal/apperrors"
	"github.com/Rorical/AgentDesk/internal/gateway"
	"github.com/Rorical/AgentDesk/internal/preview"
	"github.com/Rorical/AgentDesk/ui/components"
)

// AvatarCategory tags avatar uploads on the file backend.
const AvatarCategory = "avatar"

// AvatarDraft is the avatar form: the file picked for upload.
type AvatarDraft struct {
	OwnerID string
	File    *preview.File
}

// ValidateAvatar requires a selected file.
func ValidateAvatar(d AvatarDraft) error {
	if d.File == nil {
		return apperrors.Validation(apperrors.ReasonFileRequired, "errors.file_required")
	}
	return nil
}

// UploadAvatar stores the file as a public avatar owned by the agent, then
// points the profile at it. It returns the new avatar URL.
func UploadAvatar(ctx context.Context, gw gateway.Gateway, draft AvatarDraft) (string, error) {
	uploaded, err := gw.UploadFile(ctx, gateway.Upload{
		Name:     draft.File.Name,
		Content:  draft.File.Content,
		OwnerID:  draft.OwnerID,
		Category: AvatarCategory,
		Public:   true,
	})
	if err != nil {
		return "", err
	}
	if _, err := gw.UpdateProfile(ctx, gateway.ProfileFields{AvatarURL: gateway.String(uploaded.URL)}); err != nil {
		return "", err
	}
	return uploaded.URL, nil
}

// AvatarDialog uploads a new avatar. The picked file is previewed locally
// before anything is uploaded; the preview is released on every way out.
type AvatarDialog struct {
	deps    Deps
	machine *Machine[AvatarDraft, string]
	form    form
	preview *preview.Manager

	// OnSuccess receives the new avatar URL once per successful upload.
	OnSuccess func(url string)
}

// NewAvatarDialog creates the dialog. registry may be nil.
func NewAvatarDialog(deps Deps, registry *preview.Registry) *AvatarDialog {
	deps = deps.withDefaults()
	d := &AvatarDialog{
		deps:    deps,
		preview: preview.NewManager(registry),
	}
	d.machine = NewMachine(ValidateAvatar, func(ctx context.Context, draft AvatarDraft) (string, error) {
		return UploadAvatar(ctx, deps.Gateway, draft)
	})
	d.machine.SetTranslator(deps.T)
	d.machine.OnClose(func() {
		d.preview.Release()
		d.form.reset()
	})
	d.form.fields = []field{newField("dialog.avatar.path", false)}
	return d
}

// Open shows the dialog for ownerID, displaying the current avatar.
func (d *AvatarDialog) Open(ownerID, currentURL string) tea.Cmd {
	d.machine.Open(AvatarDraft{OwnerID: ownerID})
	d.form.reset()
	d.preview.Reset(currentURL)
	return d.form.show(0)
}

func (d *AvatarDialog) IsOpen() bool { return d.machine.IsOpen() }

func (d *AvatarDialog) Status() Status { return d.machine.Status() }

func (d *AvatarDialog) Error() string { return d.machine.ErrorMessage() }

func (d *AvatarDialog) Instance() string { return d.machine.Instance() }

// Preview exposes the preview manager.
func (d *AvatarDialog) Preview() *preview.Manager {
	return d.preview
}

// SelectFile previews file and makes it the upload candidate.
func (d *AvatarDialog) SelectFile(file preview.File) {
	if !d.machine.IsOpen() {
		return
	}
	d.preview.SelectFile(file)
	d.machine.Draft().File = d.preview.Selected()
	d.machine.Edit()
}

// SelectPath loads a local file and selects it. A failure keeps the
// current preview.
func (d *AvatarDialog) SelectPath(path string) error {
	if !d.machine.IsOpen() {
		return nil
	}
	if err := d.preview.SelectPath(path); err != nil {
		return err
	}
	d.machine.Draft().File = d.preview.Selected()
	d.machine.Edit()
	return nil
}

func (d *AvatarDialog) Close() bool {
	return d.machine.Close()
}

// Teardown closes the dialog and releases its preview.
func (d *AvatarDialog) Teardown() {
	d.machine.Discard()
	d.preview.Release()
}

func (d *AvatarDialog) Submit() (tea.Cmd, error) {
	if !d.machine.IsOpen() {
		return nil, nil
	}
	return d.machine.Submit(d.deps.Context)
}

func (d *AvatarDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.machine.IsOpen() {
		return nil
	}
	switch msg := msg.(type) {
	case SettledMsg[string]:
		url, ok := d.machine.Settle(msg)
		if !ok {
			return nil
		}
		d.machine.Close()
		if d.OnSuccess != nil {
			d.OnSuccess(url)
		}
		return notify(d.deps.T("dialog.avatar.success"))

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
			path := strings.TrimSpace(d.form.value(0))
			if path != "" && !d.pathSelected(path) {
				d.SelectPath(path)
				return nil
			}
			cmd, _ := d.Submit()
			return cmd
		}
		d.machine.Edit()
		return d.form.update(msg)
	}
	return nil
}

func (d *AvatarDialog) pathSelected(path string) bool {
	selected := d.preview.Selected()
	return selected != nil && selected.Path == path
}

func (d *AvatarDialog) View(width int) string {
	if !d.machine.IsOpen() {
		return ""
	}
	t := d.deps.T
	view := components.DialogView{
		Title:  t("dialog.avatar.title"),
		Rows:   d.form.rows(t),
		Extra:  d.previewView(),
		Error:  d.machine.ErrorMessage(),
		Footer: helpLine(t, d.deps.Keys.Submit, d.deps.Keys.Close),
		Width:  width,
	}
	if err := d.preview.Err(); err != nil && view.Error == "" {
		view.Error = err.Error()
	}
	if d.machine.Status() == Submitting {
		view.Busy = t("dialog.submitting")
	}
	return components.RenderDialog(view)
}

func (d *AvatarDialog) previewView() string {
	t := d.deps.T
	if thumb := d.preview.Thumbnail(); thumb != "" {
		return thumb
	}
	if url := d.preview.Display(); url != "" {
		return url
	}
	return fmt.Sprintf("%s\n%s", t("dialog.avatar.none"), t("dialog.avatar.pick"))
}
