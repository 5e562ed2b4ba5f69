package panel

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectFunc reads a complete view through r.
type ProjectFunc[V any] func(ctx context.Context, r contract.Caller) (V, error)

// Result is one finished projector run, tagged with the mount it was
// started under.
type Result[V any] struct {
	Token uuid.UUID
	View  V
	Err   error
	Took  time.Duration
}

// Project runs fn against the session's read handle. It never touches
// the view slot, so it is safe to call off the UI goroutine.
func Project[V any](ctx context.Context, s *Session, fn ProjectFunc[V]) Result[V] {
	res := Result[V]{Token: s.Token()}
	start := s.env.Clock.Now()

	r, err := s.Reader()
	if err == nil {
		res.View, err = fn(ctx, r)
	}
	res.Err = err
	res.Took = s.env.Clock.Since(start)

	feature := string(s.kind.Feature)
	s.env.Metrics.Projection(feature, res.Took, err)
	if err != nil {
		s.log.Warn("refresh failed", zap.Error(err))
	}
	return res
}

// Slot holds the last good view and the current error banner. A failed
// run sets the banner and keeps the previous view.
type Slot[V any] struct {
	mu      sync.Mutex
	view    V
	ok      bool
	err     string
	updated time.Time
}

// Apply commits r if it belongs to the live mount. It reports whether r
// was applied.
func (sl *Slot[V]) Apply(s *Session, r Result[V]) bool {
	if !s.Current(r.Token) {
		return false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if r.Err != nil {
		sl.err = apperr.Message(r.Err)
		return true
	}
	sl.view = r.View
	sl.ok = true
	sl.err = ""
	sl.updated = s.Now()
	return true
}

// Get returns the last good view. ok is false before the first success.
func (sl *Slot[V]) Get() (V, bool) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.view, sl.ok
}

// Err is the banner text, empty when the last run succeeded.
func (sl *Slot[V]) Err() string {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.err
}

// Updated is when the view was last replaced.
func (sl *Slot[V]) Updated() time.Time {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.updated
}

// Reset forgets the view, for example after a network switch.
func (sl *Slot[V]) Reset() {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	var zero V
	sl.view, sl.ok, sl.err, sl.updated = zero, false, "", time.Time{}
}

// Refresh runs fn and applies the result.
func Refresh[V any](ctx context.Context, s *Session, sl *Slot[V], fn ProjectFunc[V]) error {
	r := Project(ctx, s, fn)
	if !sl.Apply(s, r) {
		return ErrStale
	}
	return r.Err
}
