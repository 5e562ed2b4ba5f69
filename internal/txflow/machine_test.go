package txflow_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phaseLog struct {
	mu     sync.Mutex
	phases []txflow.Phase
}

func (l *phaseLog) record(s txflow.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.phases = append(l.phases, s.Phase)
}

func (l *phaseLog) get() []txflow.Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]txflow.Phase(nil), l.phases...)
}

// validSequence checks that phases follow idle → pending* → (success|error) → idle
// cycles, starting from idle.
func validSequence(t *testing.T, phases []txflow.Phase) {
	t.Helper()
	prev := txflow.Idle
	for i, p := range phases {
		ok := false
		switch prev {
		case txflow.Idle:
			ok = p == txflow.Pending || p == txflow.Error
		case txflow.Pending:
			ok = p == txflow.Pending || p == txflow.Success || p == txflow.Error
		case txflow.Success, txflow.Error:
			ok = p == txflow.Idle
		}
		assert.True(t, ok, "step %d: %s → %s", i, prev, p)
		prev = p
	}
}

func TestHappyPath(t *testing.T) {
	m := txflow.NewMachine()
	log := &phaseLog{}
	m.OnChange(log.record)

	require.NoError(t, m.Begin())
	assert.Equal(t, txflow.MsgConfirm, m.Status().Message)
	assert.Empty(t, m.Status().Hash)

	m.Submitted("0xabc")
	assert.Equal(t, txflow.MsgWaiting, m.Status().Message)
	assert.Equal(t, "0xabc", m.Status().Hash)

	tk := m.Succeed("Bid placed: 0.01 BNB")
	st := m.Status()
	assert.Equal(t, txflow.Success, st.Phase)
	assert.Equal(t, "0xabc", st.Hash, "hash survives into success")
	assert.Equal(t, txflow.WindowStandard, tk.After)

	assert.True(t, m.Dismiss(tk))
	assert.Equal(t, txflow.Idle, m.Status().Phase)

	assert.Equal(t, []txflow.Phase{txflow.Pending, txflow.Pending, txflow.Success, txflow.Idle}, log.get())
}

func TestBeginWhilePendingIsBusy(t *testing.T) {
	m := txflow.NewMachine()
	require.NoError(t, m.Begin())
	assert.ErrorIs(t, m.Begin(), txflow.ErrBusy)
	assert.True(t, m.Busy())
}

func TestFailNormalizes(t *testing.T) {
	m := txflow.NewMachine()
	require.NoError(t, m.Begin())
	tk := m.Fail(errors.New("execution reverted: Bid too low"))

	st := m.Status()
	assert.Equal(t, txflow.Error, st.Phase)
	assert.Equal(t, "Bid too low. Must exceed current highest bid.", st.Message)
	assert.Equal(t, apperr.Reverted, st.Kind)
	assert.Equal(t, txflow.WindowStandard, tk.After)
}

func TestRejectValidation(t *testing.T) {
	m := txflow.NewMachine()
	tk := m.Reject(apperr.New(apperr.ValidationError, "Please enter a bid amount"))
	assert.Equal(t, txflow.Error, m.Status().Phase)
	assert.Equal(t, txflow.WindowValidation, tk.After)

	// Rejection never clobbers a pending transaction.
	m.Dismiss(tk)
	require.NoError(t, m.Begin())
	tk = m.Reject(apperr.New(apperr.ValidationError, "x"))
	assert.False(t, tk.Valid())
	assert.Equal(t, txflow.Pending, m.Status().Phase)
}

func TestRejectClearsDisplayedOutcomeFirst(t *testing.T) {
	for _, finish := range []struct {
		name string
		fn   func(m *txflow.Machine) txflow.Ticket
	}{
		{"after success", func(m *txflow.Machine) txflow.Ticket { return m.Succeed("Bid placed: 0.01 BNB") }},
		{"after error", func(m *txflow.Machine) txflow.Ticket { return m.Fail(errors.New("reverted")) }},
	} {
		t.Run(finish.name, func(t *testing.T) {
			m := txflow.NewMachine()
			require.NoError(t, m.Begin())
			old := finish.fn(m)

			log := &phaseLog{}
			m.OnChange(log.record)
			tk := m.Reject(apperr.New(apperr.ValidationError, "Please enter a bid amount"))

			assert.Equal(t, []txflow.Phase{txflow.Idle, txflow.Error}, log.get())
			assert.Equal(t, "Please enter a bid amount", m.Status().Message)
			assert.False(t, m.Dismiss(old), "the earlier outcome's timer must not clear the new error")
			assert.True(t, m.Dismiss(tk))
		})
	}
}

func TestStaleTicketDoesNotDismiss(t *testing.T) {
	m := txflow.NewMachine()
	require.NoError(t, m.Begin())
	old := m.Fail(errors.New("first"))

	require.NoError(t, m.Begin())
	m.Submitted("0x1")
	m.Succeed("second")

	assert.False(t, m.Dismiss(old))
	assert.Equal(t, txflow.Success, m.Status().Phase)
}

func TestResetInvalidatesTickets(t *testing.T) {
	m := txflow.NewMachine()
	tk := m.Reject(errors.New("boom"))
	m.Reset()
	assert.Equal(t, txflow.Idle, m.Status().Phase)
	assert.False(t, m.Dismiss(tk))
}

func TestSubmittedOutsidePendingIgnored(t *testing.T) {
	m := txflow.NewMachine()
	m.Submitted("0x1")
	assert.Equal(t, txflow.Idle, m.Status().Phase)
	assert.False(t, m.Succeed("x").Valid())
	assert.False(t, m.Fail(errors.New("x")).Valid())
}

func TestStatusSequenceIsWellFormed(t *testing.T) {
	m := txflow.NewMachine()
	log := &phaseLog{}
	m.OnChange(log.record)

	// An arbitrary mix of events, including ones that must be ignored.
	events := []func(){
		func() { m.Submitted("0x0") },
		func() { m.Begin() }, //nolint:errcheck
		func() { m.Begin() }, //nolint:errcheck
		func() { m.Reject(errors.New("ignored while pending")) },
		func() { m.Submitted("0x1") },
		func() { m.Fail(errors.New("reverted")) },
		func() { m.Succeed("late") },
		func() { m.Begin() }, //nolint:errcheck
		func() { m.Succeed("ok") },
		func() { m.Reject(apperr.New(apperr.ValidationError, "bad")) },
		func() { m.Reset() },
		func() { m.Reject(apperr.New(apperr.ValidationError, "bad again")) },
	}
	for _, e := range events {
		e()
	}
	validSequence(t, log.get())
}

func TestWindowFor(t *testing.T) {
	assert.Equal(t, txflow.WindowValidation, txflow.WindowFor(apperr.New(apperr.ValidationError, "x")))
	assert.Equal(t, txflow.WindowStandard, txflow.WindowFor(errors.New("x")))
	assert.Equal(t, txflow.WindowStandard, txflow.WindowFor(apperr.New(apperr.ChainSwitchRejected, "x")))
}
