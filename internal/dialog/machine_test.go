package dialog

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/AgentDesk/internal/apperrors"
)

type echoCall struct {
	calls int
	err   error
}

func newEchoMachine(validate func(string) error, call *echoCall) *Machine[string, string] {
	m := NewMachine(validate, func(_ context.Context, draft string) (string, error) {
		call.calls++
		if call.err != nil {
			return "", call.err
		}
		return "saved:" + draft, nil
	})
	m.SetTranslator(func(key string) string { return "t(" + key + ")" })
	return m
}

func settle(t *testing.T, cmd tea.Cmd) SettledMsg[string] {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(SettledMsg[string])
	require.True(t, ok)
	return msg
}

func TestMachineStartsClosed(t *testing.T) {
	m := newEchoMachine(nil, &echoCall{})

	assert.Equal(t, Closed, m.Status())
	assert.False(t, m.IsOpen())
	assert.Nil(t, m.Draft())
	cmd, err := m.Submit(context.Background())
	assert.Nil(t, cmd)
	assert.NoError(t, err)
}

func TestMachineOpenSeedsDraft(t *testing.T) {
	m := newEchoMachine(nil, &echoCall{})

	m.Open("seed")

	assert.Equal(t, Editing, m.Status())
	require.NotNil(t, m.Draft())
	assert.Equal(t, "seed", *m.Draft())
	assert.NotEmpty(t, m.Instance())
}

func TestMachineSuccessfulSubmit(t *testing.T) {
	call := &echoCall{}
	m := newEchoMachine(nil, call)
	m.Open("a")
	*m.Draft() = "b"

	cmd, err := m.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Submitting, m.Status())

	result, ok := m.Settle(settle(t, cmd))

	assert.True(t, ok)
	assert.Equal(t, "saved:b", result)
	assert.Equal(t, Settled, m.Status())
	assert.Equal(t, 1, call.calls)
}

func TestMachineSecondSubmitWhileSubmittingIsIgnored(t *testing.T) {
	call := &echoCall{}
	m := newEchoMachine(nil, call)
	m.Open("a")

	first, err := m.Submit(context.Background())
	require.NoError(t, err)
	second, err := m.Submit(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, second)
	settle(t, first)
	assert.Equal(t, 1, call.calls)
}

func TestMachineValidationFailureSkipsSubmit(t *testing.T) {
	call := &echoCall{}
	m := newEchoMachine(func(string) error {
		return apperrors.Validation(apperrors.ReasonFieldRequired, "errors.field_required")
	}, call)
	m.Open("")

	cmd, err := m.Submit(context.Background())

	assert.Nil(t, cmd)
	assert.True(t, apperrors.IsValidation(err, apperrors.ReasonFieldRequired))
	assert.Equal(t, Errored, m.Status())
	assert.Equal(t, "t(errors.field_required)", m.ErrorMessage())
	assert.Zero(t, call.calls)
}

func TestMachineFailureKeepsDraftAndMessage(t *testing.T) {
	call := &echoCall{err: apperrors.E(apperrors.KindRemote, "email is invalid")}
	m := newEchoMachine(nil, call)
	m.Open("a")
	*m.Draft() = "typed"

	cmd, _ := m.Submit(context.Background())
	_, ok := m.Settle(settle(t, cmd))

	assert.False(t, ok)
	assert.Equal(t, Errored, m.Status())
	assert.Equal(t, "email is invalid", m.ErrorMessage())
	assert.Equal(t, "typed", *m.Draft())
}

func TestMachineFailureWithoutMessageUsesFallback(t *testing.T) {
	call := &echoCall{err: apperrors.E(apperrors.KindRemote, "")}
	m := newEchoMachine(nil, call)
	m.Open("a")

	cmd, _ := m.Submit(context.Background())
	m.Settle(settle(t, cmd))

	assert.Equal(t, "t(errors.unknown)", m.ErrorMessage())
}

func TestMachineEditClearsErrorAndAllowsRetry(t *testing.T) {
	call := &echoCall{err: errors.New("boom")}
	m := newEchoMachine(nil, call)
	m.Open("a")
	cmd, _ := m.Submit(context.Background())
	m.Settle(settle(t, cmd))
	require.Equal(t, Errored, m.Status())

	m.Edit()
	assert.Equal(t, Editing, m.Status())
	assert.Empty(t, m.ErrorMessage())

	call.err = nil
	cmd, err := m.Submit(context.Background())
	require.NoError(t, err)
	_, ok := m.Settle(settle(t, cmd))
	assert.True(t, ok)
	assert.Equal(t, 2, call.calls)
}

func TestMachineDropsResultAfterClose(t *testing.T) {
	m := newEchoMachine(nil, &echoCall{})
	m.Open("a")
	cmd, _ := m.Submit(context.Background())

	require.True(t, m.Close())
	_, ok := m.Settle(settle(t, cmd))

	assert.False(t, ok)
	assert.Equal(t, Closed, m.Status())
}

func TestMachineDropsResultFromPreviousInstance(t *testing.T) {
	m := newEchoMachine(nil, &echoCall{})
	m.Open("a")
	stale, _ := m.Submit(context.Background())
	m.Close()
	m.Open("b")

	_, ok := m.Settle(settle(t, stale))

	assert.False(t, ok)
	assert.Equal(t, Editing, m.Status())
	assert.Equal(t, "b", *m.Draft())
}

func TestMachineForcedRefusesCloseUntilSettled(t *testing.T) {
	m := newEchoMachine(nil, &echoCall{})
	m.OpenForced("a")

	assert.False(t, m.Close())
	assert.True(t, m.IsOpen())

	cmd, _ := m.Submit(context.Background())
	_, ok := m.Settle(settle(t, cmd))
	require.True(t, ok)
	assert.True(t, m.Close())
	assert.False(t, m.Forced())
}

func TestMachineDiscardIgnoresForcedMode(t *testing.T) {
	closes := 0
	m := newEchoMachine(nil, &echoCall{})
	m.OnClose(func() { closes++ })
	m.OpenForced("a")

	m.Discard()
	m.Discard()

	assert.Equal(t, Closed, m.Status())
	assert.Equal(t, 1, closes)
}

func TestMachineCloseDiscardsDraft(t *testing.T) {
	closes := 0
	m := newEchoMachine(nil, &echoCall{})
	m.OnClose(func() { closes++ })
	m.Open("a")

	assert.True(t, m.Close())
	assert.True(t, m.Close())

	assert.Nil(t, m.Draft())
	assert.Empty(t, m.Instance())
	assert.Equal(t, 1, closes)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "unknown", Status(42).String())
}
