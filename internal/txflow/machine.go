// Package txflow tracks the lifecycle of the one transaction a panel may
// have in flight: idle, pending while the wallet prompts and the chain
// mines, then success or error until the message is dismissed.
package txflow

import (
	"errors"
	"sync"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
)

// Phase of the lifecycle.
type Phase int

const (
	Idle Phase = iota
	Pending
	Success
	Error
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "idle"
}

// Status messages while pending.
const (
	MsgConfirm = "Confirm in your wallet…"
	MsgWaiting = "Waiting for confirmation…"
)

// Display windows before success and error messages return to idle.
const (
	WindowStandard     = 6 * time.Second
	WindowPrecondition = 4 * time.Second
	WindowValidation   = 3 * time.Second
)

// ErrBusy is returned by Begin while a transaction is pending.
var ErrBusy = errors.New("a transaction is already in progress")

// Status is a snapshot of the machine. Hash is set from the moment the
// wallet returns a submitted transaction and stays set through success.
type Status struct {
	Phase   Phase
	Message string
	Hash    string
	Kind    apperr.Kind
}

// Busy reports whether actions must stay disabled.
func (s Status) Busy() bool { return s.Phase == Pending }

// Ticket identifies a success or error display. Dismissing with a stale
// ticket does nothing, so a late timer cannot clear a newer message.
type Ticket struct {
	Gen   uint64
	After time.Duration
}

// Valid reports whether the ticket refers to a displayed outcome.
func (t Ticket) Valid() bool { return t.Gen != 0 }

// Machine is the per-panel transaction state. Safe for concurrent use.
type Machine struct {
	mu        sync.Mutex
	status    Status
	gen       uint64
	observers []func(Status)
}

// NewMachine returns an idle machine.
func NewMachine() *Machine {
	return &Machine{}
}

// OnChange registers fn to be called after every transition.
func (m *Machine) OnChange(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Status returns the current snapshot.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Busy reports whether a transaction is pending.
func (m *Machine) Busy() bool {
	return m.Status().Busy()
}

// Begin moves to pending. A displayed success or error is cleared first.
func (m *Machine) Begin() error {
	return m.BeginWith(MsgConfirm)
}

// BeginWith is Begin with a custom pending message.
func (m *Machine) BeginWith(msg string) error {
	m.mu.Lock()
	if m.status.Phase == Pending {
		m.mu.Unlock()
		return ErrBusy
	}
	var changes []Status
	if m.status.Phase != Idle {
		m.gen++
		m.status = Status{}
		changes = append(changes, m.status)
	}
	m.status = Status{Phase: Pending, Message: msg}
	changes = append(changes, m.status)
	m.mu.Unlock()
	m.notify(changes...)
	return nil
}

// Submitted records the hash the wallet returned.
func (m *Machine) Submitted(hash string) {
	m.transition(func(s *Status) bool {
		if s.Phase != Pending {
			return false
		}
		*s = Status{Phase: Pending, Message: MsgWaiting, Hash: hash}
		return true
	})
}

// Succeed moves a pending transaction to success.
func (m *Machine) Succeed(msg string) Ticket {
	return m.finish(func(s *Status) bool {
		if s.Phase != Pending {
			return false
		}
		*s = Status{Phase: Success, Message: msg, Hash: s.Hash}
		return true
	}, WindowStandard)
}

// Fail moves a pending transaction to error with the normalized message.
func (m *Machine) Fail(err error) Ticket {
	msg, kind := apperr.Normalize(err)
	return m.finish(func(s *Status) bool {
		if s.Phase != Pending {
			return false
		}
		*s = Status{Phase: Error, Message: msg, Kind: kind}
		return true
	}, WindowFor(err))
}

// Reject shows an error for input that never reached the wallet. It does
// nothing while a transaction is pending. A displayed outcome is cleared
// to idle first.
func (m *Machine) Reject(err error) Ticket {
	msg, kind := apperr.Normalize(err)
	m.mu.Lock()
	if m.status.Phase == Pending {
		m.mu.Unlock()
		return Ticket{}
	}
	var changes []Status
	if m.status.Phase != Idle {
		m.status = Status{}
		changes = append(changes, m.status)
	}
	m.gen++
	m.status = Status{Phase: Error, Message: msg, Kind: kind}
	changes = append(changes, m.status)
	t := Ticket{Gen: m.gen, After: WindowFor(err)}
	m.mu.Unlock()
	m.notify(changes...)
	return t
}

// Dismiss returns to idle if t still refers to the displayed outcome.
func (m *Machine) Dismiss(t Ticket) bool {
	return m.transition(func(s *Status) bool {
		if t.Gen != m.gen || (s.Phase != Success && s.Phase != Error) {
			return false
		}
		*s = Status{}
		return true
	})
}

// Reset drops any displayed outcome and invalidates outstanding tickets.
// A pending transaction stays pending; its result is still recorded.
func (m *Machine) Reset() {
	m.transition(func(s *Status) bool {
		m.gen++
		if s.Phase == Pending || s.Phase == Idle {
			return false
		}
		*s = Status{}
		return true
	})
}

func (m *Machine) finish(fn func(*Status) bool, window time.Duration) Ticket {
	var t Ticket
	m.transition(func(s *Status) bool {
		if !fn(s) {
			return false
		}
		m.gen++
		t = Ticket{Gen: m.gen, After: window}
		return true
	})
	return t
}

func (m *Machine) transition(fn func(*Status) bool) bool {
	m.mu.Lock()
	changed := fn(&m.status)
	s := m.status
	m.mu.Unlock()
	if changed {
		m.notify(s)
	}
	return changed
}

func (m *Machine) notify(states ...Status) {
	m.mu.Lock()
	obs := append([]func(Status){}, m.observers...)
	m.mu.Unlock()
	for _, s := range states {
		for _, fn := range obs {
			fn(s)
		}
	}
}

type windowed interface {
	DisplayWindow() time.Duration
}

// WindowFor picks how long an error stays on screen.
func WindowFor(err error) time.Duration {
	var w windowed
	if errors.As(err, &w) {
		return w.DisplayWindow()
	}
	if apperr.KindOf(err) == apperr.ValidationError {
		return WindowValidation
	}
	return WindowStandard
}
