// Package lottery reads the multi-round lottery and prepares its writes.
package lottery

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/countdown"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
)

// Contract is a typed read binding.
type Contract struct {
	r contract.Caller
}

// New binds r.
func New(r contract.Caller) *Contract { return &Contract{r: r} }

// Round is one lottery round as stored on chain.
type Round struct {
	TicketPrice  *big.Int
	PrizePool    *big.Int
	TotalTickets *big.Int
	EndTime      *big.Int
	IsOpen       bool
	Winner       common.Address
	IsPaid       bool
}

// Drawn is true once a winner was picked.
func (r Round) Drawn() bool { return r.Winner != (common.Address{}) }

// RoundCount calls roundCount().
func (c *Contract) RoundCount(ctx context.Context) (uint64, error) {
	out, err := c.r.Call(ctx, "roundCount")
	if err != nil {
		return 0, err
	}
	n, err := contract.Out[*big.Int](out, 0)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("round count %s out of range", n)
	}
	return n.Uint64(), nil
}

// Owner calls owner().
func (c *Contract) Owner(ctx context.Context) (common.Address, error) {
	out, err := c.r.Call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return contract.Out[common.Address](out, 0)
}

// Round calls getRound(id).
func (c *Contract) Round(ctx context.Context, id uint64) (Round, error) {
	out, err := c.r.Call(ctx, "getRound", new(big.Int).SetUint64(id))
	if err != nil {
		return Round{}, err
	}
	return contract.Out[Round](out, 0)
}

// TicketPrice reads the price from the public rounds(id) getter.
func (c *Contract) TicketPrice(ctx context.Context, id uint64) (*big.Int, error) {
	out, err := c.r.Call(ctx, "rounds", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return contract.Out[*big.Int](out, 0)
}

// Tickets is how many tickets player holds in round id.
func (c *Contract) Tickets(ctx context.Context, id uint64, player common.Address) (*big.Int, error) {
	out, err := c.r.Call(ctx, "getMyTickets", new(big.Int).SetUint64(id), player)
	if err != nil {
		return nil, err
	}
	return contract.Out[*big.Int](out, 0)
}

// View is what the panel shows.
type View struct {
	RoundCount uint64
	Owner      common.Address
	// RoundID is the round on display, 0 while no round exists.
	RoundID     uint64
	Round       *Round
	SecondsLeft int64
	// MyTickets is nil when there is no account or the lookup failed.
	MyTickets *big.Int
}

// Drawn reports whether the displayed round has a winner.
func (v View) Drawn() bool { return v.Round != nil && v.Round.Drawn() }

// IsOver is true once the round is drawn or its time ran out.
func (v View) IsOver() bool {
	return v.Round != nil && (v.Round.Drawn() || v.SecondsLeft <= 0)
}

// IsOpen reports whether tickets can be bought.
func (v View) IsOpen() bool { return v.Round != nil && v.Round.IsOpen }

// IsOwner reports whether addr owns the lottery.
func (v View) IsOwner(addr *common.Address) bool {
	return addr != nil && *addr == v.Owner
}

// Countdown anchors the local ticker. A drawn or closed round does not
// tick.
func (v View) Countdown() countdown.Countdown {
	return countdown.Anchor(v.SecondsLeft, v.Round == nil || v.Drawn() || !v.Round.IsOpen)
}

// Projector reads one round. Selected is the round the user picked, 0 for
// the latest.
type Projector struct {
	Clock    clock.PassiveClock
	Selected uint64
	User     *common.Address
}

// Project reads roundCount and owner in parallel, then the selected round
// and the user's tickets in it.
func (p Projector) Project(ctx context.Context, r contract.Caller) (View, error) {
	c := New(r)
	var v View

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		v.RoundCount, err = c.RoundCount(gctx)
		return err
	})
	g.Go(func() (err error) {
		v.Owner, err = c.Owner(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}

	v.RoundID = Clamp(p.Selected, v.RoundCount)
	if v.RoundID == 0 {
		return v, nil
	}
	round, err := c.Round(ctx, v.RoundID)
	if err != nil {
		return View{}, err
	}
	v.Round = &round
	v.SecondsLeft = secondsUntil(round.EndTime, p.now())

	if p.User != nil {
		// A failed lookup leaves the count unknown rather than failing the view.
		if n, err := c.Tickets(ctx, v.RoundID, *p.User); err == nil {
			v.MyTickets = n
		}
	}
	return v, nil
}

func (p Projector) now() int64 {
	if p.Clock == nil {
		return clock.RealClock{}.Now().Unix()
	}
	return p.Clock.Now().Unix()
}

func secondsUntil(end *big.Int, now int64) int64 {
	if end == nil || !end.IsInt64() {
		return 0
	}
	if left := end.Int64() - now; left > 0 {
		return left
	}
	return 0
}

// Clamp keeps a selection inside [1, count]. 0 selects the latest round;
// with no rounds the result is 0.
func Clamp(selected, count uint64) uint64 {
	if count == 0 {
		return 0
	}
	if selected == 0 || selected > count {
		return count
	}
	return selected
}

// Prev steps back one round, stopping at 1.
func Prev(selected, count uint64) uint64 {
	s := Clamp(selected, count)
	if s > 1 {
		return s - 1
	}
	return s
}

// Next steps forward one round, stopping at count.
func Next(selected, count uint64) uint64 {
	s := Clamp(selected, count)
	if s < count {
		return s + 1
	}
	return s
}
