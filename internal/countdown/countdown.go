// Package countdown keeps the locally ticking "seconds left" value shown
// between two projector runs.
package countdown

import "time"

// Interval between ticks.
const Interval = time.Second

// Countdown is an immutable snapshot; Tick returns the next one.
type Countdown struct {
	Remaining int64
	// Halted is set when the contract reports the auction ended or the
	// round closed or drawn. A halted countdown never changes.
	Halted bool
}

// Anchor re-bases the countdown on a freshly read on-chain value.
func Anchor(secs int64, halted bool) Countdown {
	if secs < 0 {
		secs = 0
	}
	return Countdown{Remaining: secs, Halted: halted}
}

// Running reports whether further ticks change the value.
func (c Countdown) Running() bool {
	return !c.Halted && c.Remaining > 0
}

// Tick advances by one second.
func (c Countdown) Tick() Countdown {
	if !c.Running() {
		return c
	}
	c.Remaining--
	return c
}

// Elapse advances by the whole seconds in d, for callers whose ticks were
// delayed.
func (c Countdown) Elapse(d time.Duration) Countdown {
	if !c.Running() || d <= 0 {
		return c
	}
	c.Remaining -= int64(d / time.Second)
	if c.Remaining < 0 {
		c.Remaining = 0
	}
	return c
}
