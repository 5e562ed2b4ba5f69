// Package auction reads the single-item English auction and prepares its
// writes.
package auction

import (
	"context"
	"math"
	"math/big"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/countdown"
	"github.com/Mohsinsiddi/bnbpanel/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// Contract is a typed read binding.
type Contract struct {
	r contract.Caller
}

// New binds r.
func New(r contract.Caller) *Contract { return &Contract{r: r} }

// Status is the getStatus() tuple.
type Status struct {
	Item        string
	Leader      common.Address
	LeadingBid  *big.Int
	SecondsLeft *big.Int
	IsEnded     bool
}

// Status calls getStatus().
func (c *Contract) Status(ctx context.Context) (Status, error) {
	out, err := c.r.Call(ctx, "getStatus")
	if err != nil {
		return Status{}, err
	}
	var s Status
	if s.Item, err = contract.Out[string](out, 0); err != nil {
		return s, err
	}
	if s.Leader, err = contract.Out[common.Address](out, 1); err != nil {
		return s, err
	}
	if s.LeadingBid, err = contract.Out[*big.Int](out, 2); err != nil {
		return s, err
	}
	if s.SecondsLeft, err = contract.Out[*big.Int](out, 3); err != nil {
		return s, err
	}
	s.IsEnded, err = contract.Out[bool](out, 4)
	return s, err
}

// Owner calls owner().
func (c *Contract) Owner(ctx context.Context) (common.Address, error) {
	out, err := c.r.Call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return contract.Out[common.Address](out, 0)
}

// PendingReturns is the refundable balance of an outbid bidder.
func (c *Contract) PendingReturns(ctx context.Context, who common.Address) (*big.Int, error) {
	out, err := c.r.Call(ctx, "pendingReturns", who)
	if err != nil {
		return nil, err
	}
	return contract.Out[*big.Int](out, 0)
}

// View is what the panel shows.
type View struct {
	ItemName      string
	HighestBid    *big.Int
	HighestBidder common.Address
	Owner         common.Address
	Ended         bool
	SecondsLeft   int64
}

// HasBids is false until someone bids.
func (v View) HasBids() bool { return v.HighestBidder != (common.Address{}) }

// IsOwner reports whether addr owns the auction.
func (v View) IsOwner(addr *common.Address) bool {
	return addr != nil && *addr == v.Owner
}

// Countdown anchors the local ticker on this view.
func (v View) Countdown() countdown.Countdown {
	return countdown.Anchor(v.SecondsLeft, v.Ended)
}

// HighestBidText formats the leading bid.
func (v View) HighestBidText() string { return units.FormatEther(v.HighestBid) }

// Project reads getStatus and owner in parallel.
func Project(ctx context.Context, r contract.Caller) (View, error) {
	c := New(r)
	var (
		st    Status
		owner common.Address
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st, err = c.Status(gctx)
		return err
	})
	g.Go(func() (err error) {
		owner, err = c.Owner(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}

	v := View{
		ItemName:      st.Item,
		HighestBid:    st.LeadingBid,
		HighestBidder: st.Leader,
		Owner:         owner,
		Ended:         st.IsEnded,
		SecondsLeft:   clampSeconds(st.SecondsLeft),
	}
	if v.HighestBid == nil {
		v.HighestBid = new(big.Int)
	}
	if v.Ended {
		v.SecondsLeft = 0
	}
	return v, nil
}

func clampSeconds(v *big.Int) int64 {
	switch {
	case v == nil || v.Sign() <= 0:
		return 0
	case !v.IsInt64():
		return math.MaxInt64
	}
	return v.Int64()
}
