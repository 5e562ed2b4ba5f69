package countdown_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/countdown"
	"github.com/stretchr/testify/assert"
)

func TestAnchorClampsNegative(t *testing.T) {
	c := countdown.Anchor(-5, false)
	assert.Equal(t, int64(0), c.Remaining)
	assert.False(t, c.Running())
}

func TestTickStopsAtZero(t *testing.T) {
	c := countdown.Anchor(2, false)
	c = c.Tick()
	assert.Equal(t, int64(1), c.Remaining)
	c = c.Tick().Tick().Tick()
	assert.Equal(t, int64(0), c.Remaining)
	assert.False(t, c.Running())
}

func TestHaltedNeverMoves(t *testing.T) {
	c := countdown.Anchor(90, true)
	assert.False(t, c.Running())
	assert.Equal(t, int64(90), c.Tick().Remaining)
	assert.Equal(t, int64(90), c.Elapse(time.Minute).Remaining)
}

func TestElapse(t *testing.T) {
	tests := []struct {
		name  string
		start int64
		d     time.Duration
		want  int64
	}{
		{"sub-second", 10, 900 * time.Millisecond, 10},
		{"whole seconds", 10, 3 * time.Second, 7},
		{"overshoot", 10, time.Minute, 0},
		{"negative", 10, -time.Second, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countdown.Anchor(tt.start, false).Elapse(tt.d).Remaining)
		})
	}
}

func TestNonIncreasingBetweenAnchors(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 50; run++ {
		c := countdown.Anchor(rng.Int63n(20), rng.Intn(4) == 0)
		prev := c.Remaining
		for i := 0; i < 40; i++ {
			if rng.Intn(2) == 0 {
				c = c.Tick()
			} else {
				c = c.Elapse(time.Duration(rng.Int63n(3000)) * time.Millisecond)
			}
			assert.LessOrEqual(t, c.Remaining, prev)
			assert.GreaterOrEqual(t, c.Remaining, int64(0))
			prev = c.Remaining
		}
	}
}
