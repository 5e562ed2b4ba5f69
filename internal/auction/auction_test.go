package auction_test

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/auction"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract/contracttest"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel/paneltest"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	"github.com/Mohsinsiddi/bnbpanel/internal/validate"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	rival   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	bigEq   = cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 })
	oneCent = big.NewInt(10_000_000_000_000_000)
)

// fakeAuction mirrors the contract's bookkeeping closely enough for the
// panel: bids must beat the leader, outbid amounts become pending returns.
type fakeAuction struct {
	mu          sync.Mutex
	item        string
	leader      common.Address
	bid         *big.Int
	secondsLeft int64
	ended       bool
	pending     map[common.Address]*big.Int
}

func install(h *paneltest.Harness, a *fakeAuction) {
	if a.bid == nil {
		a.bid = new(big.Int)
	}
	a.pending = map[common.Address]*big.Int{}
	h.Chain.
		View("getStatus", func(common.Address, []any) ([]any, error) {
			a.mu.Lock()
			defer a.mu.Unlock()
			return []any{a.item, a.leader, new(big.Int).Set(a.bid), big.NewInt(a.secondsLeft), a.ended}, nil
		}).
		View("owner", func(common.Address, []any) ([]any, error) { return []any{owner}, nil }).
		View("pendingReturns", func(_ common.Address, args []any) ([]any, error) {
			a.mu.Lock()
			defer a.mu.Unlock()
			if v, ok := a.pending[args[0].(common.Address)]; ok {
				return []any{v}, nil
			}
			return []any{new(big.Int)}, nil
		}).
		Tx("placeBid", func(from common.Address, value *big.Int, _ []any) error {
			a.mu.Lock()
			defer a.mu.Unlock()
			if a.ended || a.secondsLeft == 0 {
				return contracttest.Revert("Auction has ended")
			}
			if value.Cmp(a.bid) <= 0 {
				return contracttest.Revert("Bid too low")
			}
			if a.bid.Sign() > 0 {
				a.pending[a.leader] = new(big.Int).Add(pendingOf(a.pending, a.leader), a.bid)
			}
			a.leader, a.bid = from, new(big.Int).Set(value)
			return nil
		}).
		Tx("endEarly", func(from common.Address, _ *big.Int, _ []any) error {
			if from != owner {
				return contracttest.Revert("Only owner")
			}
			return nil
		})
}

func pendingOf(m map[common.Address]*big.Int, a common.Address) *big.Int {
	if v, ok := m[a]; ok {
		return v
	}
	return new(big.Int)
}

func refresher(h *paneltest.Harness, slot *panel.Slot[auction.View]) func(context.Context) {
	return func(ctx context.Context) { _ = panel.Refresh(ctx, h.Session, slot, auction.Project) }
}

// ---------------------------------------------------------------------------
// Projector
// ---------------------------------------------------------------------------

func TestProjectMapsStatus(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	install(h, &fakeAuction{item: "Vintage Guitar", leader: rival, bid: oneCent, secondsLeft: 3725})

	r, err := h.Session.Reader()
	require.NoError(t, err)
	got, err := auction.Project(context.Background(), r)
	require.NoError(t, err)

	want := auction.View{
		ItemName:      "Vintage Guitar",
		HighestBid:    oneCent,
		HighestBidder: rival,
		Owner:         owner,
		SecondsLeft:   3725,
	}
	if diff := cmp.Diff(want, got, bigEq); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.HasBids())
	assert.True(t, got.Countdown().Running())
	assert.Equal(t, "0.01", got.HighestBidText())
	assert.Equal(t, 1, h.Chain.Count("getStatus"))
	assert.Equal(t, 1, h.Chain.Count("owner"))
}

func TestProjectEndedZeroesCountdown(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	install(h, &fakeAuction{item: "x", secondsLeft: 50, ended: true})

	r, _ := h.Session.Reader()
	v, err := auction.Project(context.Background(), r)
	require.NoError(t, err)
	assert.Zero(t, v.SecondsLeft)
	assert.False(t, v.HasBids())
	assert.False(t, v.Countdown().Running())
}

func TestIsOwner(t *testing.T) {
	v := auction.View{Owner: owner}
	assert.True(t, v.IsOwner(&owner))
	assert.False(t, v.IsOwner(&rival))
	assert.False(t, v.IsOwner(nil))
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

func TestFirstBidOnTestnet(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	install(h, &fakeAuction{item: "Vintage Guitar", secondsLeft: 120})

	var slot panel.Slot[auction.View]
	require.NoError(t, panel.Refresh(context.Background(), h.Session, &slot, auction.Project))
	v, _ := slot.Get()
	require.Zero(t, v.HighestBid.Sign())

	_, err := h.Session.Submit(context.Background(), auction.PlaceBid("0.01", v, v.SecondsLeft), refresher(h, &slot))
	require.NoError(t, err)

	require.Len(t, h.Chain.Sent, 1)
	assert.Equal(t, 0, oneCent.Cmp(h.Chain.Sent[0].Value()))

	st := h.Session.Machine().Status()
	assert.Equal(t, txflow.Success, st.Phase)
	assert.Equal(t, "Bid placed: 0.01 BNB", st.Message)
	assert.Equal(t, h.Chain.Sent[0].Hash().Hex(), st.Hash)

	v, _ = slot.Get()
	assert.Equal(t, 0, oneCent.Cmp(v.HighestBid))
	assert.Equal(t, paneltest.User(), v.HighestBidder)
}

func TestBidBelowHighestNeverPrompts(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	install(h, &fakeAuction{item: "x", leader: rival, bid: big.NewInt(20_000_000_000_000_000), secondsLeft: 120})

	var slot panel.Slot[auction.View]
	require.NoError(t, panel.Refresh(context.Background(), h.Session, &slot, auction.Project))
	v, _ := slot.Get()

	tk, err := h.Session.Submit(context.Background(), auction.PlaceBid("0.01", v, v.SecondsLeft), nil)
	require.Error(t, err)
	assert.Equal(t, "Bid must exceed 0.02 BNB (current highest bid)", h.Session.Machine().Status().Message)
	assert.LessOrEqual(t, tk.After, validate.WindowState)
	assert.Zero(t, h.Wallet.Count(wallet.MethodSendTransaction))
	assert.Zero(t, h.Wallet.Count(wallet.MethodChainID))

	assert.True(t, h.Session.Machine().Dismiss(tk))
	assert.Equal(t, txflow.Idle, h.Session.Machine().Status().Phase)
}

func TestBidRevertIsTranslated(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	a := &fakeAuction{item: "x", secondsLeft: 120}
	install(h, a)

	var slot panel.Slot[auction.View]
	require.NoError(t, panel.Refresh(context.Background(), h.Session, &slot, auction.Project))
	v, _ := slot.Get()

	// The auction ends between the read and the bid.
	a.mu.Lock()
	a.ended = true
	a.mu.Unlock()

	_, err := h.Session.Submit(context.Background(), auction.PlaceBid("0.5", v, v.SecondsLeft), nil)
	require.Error(t, err)
	st := h.Session.Machine().Status()
	assert.Equal(t, "Auction has ended. Refresh to see current status.", st.Message)
	assert.Equal(t, apperr.Reverted, st.Kind)
}

func TestEndEarlyByNonOwnerReverts(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	install(h, &fakeAuction{item: "x", secondsLeft: 120})

	_, err := h.Session.Submit(context.Background(), auction.EndEarly(), nil)
	require.Error(t, err)
	assert.Equal(t, "Only owner", h.Session.Machine().Status().Message)
}

func TestPendingReturnsAfterOutbid(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	a := &fakeAuction{item: "x", leader: rival, bid: oneCent, secondsLeft: 120}
	install(h, a)
	a.pending[paneltest.User()] = big.NewInt(5)

	r, _ := h.Session.Reader()
	got, err := auction.New(r).PendingReturns(context.Background(), paneltest.User())
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Int64())

	got, err = auction.New(r).PendingReturns(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, got.Sign())
}
