// Package crowdfund reads the crowdfunding factory and prepares its writes.
package crowdfund

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// PollInterval is how often an open panel re-reads the selected campaign.
const PollInterval = 15 * time.Second

// Contract is a typed read binding.
type Contract struct {
	r contract.Caller
}

// New binds r.
func New(r contract.Caller) *Contract { return &Contract{r: r} }

// Campaign mirrors the getCampaign tuple.
type Campaign struct {
	ID             *big.Int `abi:"id"`
	Creator        common.Address
	Title          string
	Description    string
	ImageURL       string `abi:"imageUrl"`
	GoalAmount     *big.Int
	RaisedAmount   *big.Int
	Deadline       *big.Int
	GoalReached    bool
	FundsWithdrawn bool
	IsCancelled    bool
	BackerCount    *big.Int
}

// Expired reports whether the deadline has passed at now.
func (c Campaign) Expired(now time.Time) bool {
	return c.Deadline == nil || !c.Deadline.IsInt64() || c.Deadline.Int64() <= now.Unix()
}

func (c *Contract) Count(ctx context.Context) (uint64, error) {
	out, err := c.r.Call(ctx, "campaignCount")
	if err != nil {
		return 0, err
	}
	n, err := contract.Out[*big.Int](out, 0)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("campaign count %s out of range", n)
	}
	return n.Uint64(), nil
}

func (c *Contract) Campaign(ctx context.Context, id uint64) (Campaign, error) {
	out, err := c.r.Call(ctx, "getCampaign", new(big.Int).SetUint64(id))
	if err != nil {
		return Campaign{}, err
	}
	return contract.Out[Campaign](out, 0)
}

// Contribution is what backer has put into campaign id.
func (c *Contract) Contribution(ctx context.Context, id uint64, backer common.Address) (*big.Int, error) {
	out, err := c.r.Call(ctx, "getContribution", new(big.Int).SetUint64(id), backer)
	if err != nil {
		return nil, err
	}
	return contract.Out[*big.Int](out, 0)
}

// View is what the panel shows for the selected campaign.
type View struct {
	Count uint64
	// CampaignID is 0 while the factory has no campaigns.
	CampaignID uint64
	Campaign   *Campaign
	// MyContribution is nil without an account or when the lookup failed.
	MyContribution *big.Int
}

// IsCreator reports whether addr created the displayed campaign.
func (v View) IsCreator(addr *common.Address) bool {
	return v.Campaign != nil && addr != nil && *addr == v.Campaign.Creator
}

// Progress is raised/goal, clamped to [0, 1].
func (v View) Progress() float64 {
	if v.Campaign == nil || v.Campaign.GoalAmount == nil || v.Campaign.GoalAmount.Sign() <= 0 ||
		v.Campaign.RaisedAmount == nil {
		return 0
	}
	p, _ := new(big.Rat).SetFrac(v.Campaign.RaisedAmount, v.Campaign.GoalAmount).Float64()
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// TimeLeft is the coarse deadline text.
func (v View) TimeLeft(now time.Time) string {
	if v.Campaign == nil || v.Campaign.Deadline == nil {
		return ""
	}
	if !v.Campaign.Deadline.IsInt64() {
		// Same rule as Expired.
		return units.FormatDeadline(0, now)
	}
	return units.FormatDeadline(v.Campaign.Deadline.Int64(), now)
}

// CanFund: not cancelled, not expired, funds not withdrawn.
func (v View) CanFund(now time.Time) bool {
	c := v.Campaign
	return c != nil && !c.IsCancelled && !c.Expired(now) && !c.FundsWithdrawn
}

// CanWithdraw: the creator of a funded campaign that has not withdrawn.
func (v View) CanWithdraw(addr *common.Address) bool {
	c := v.Campaign
	return v.IsCreator(addr) && c.GoalReached && !c.FundsWithdrawn
}

// CanCancel: the creator, before withdrawal or cancellation.
func (v View) CanCancel(addr *common.Address) bool {
	c := v.Campaign
	return v.IsCreator(addr) && !c.FundsWithdrawn && !c.IsCancelled
}

// CanRefund: a backer of a cancelled campaign, or of one that expired
// short of its goal. Creators never get the refund action.
func (v View) CanRefund(addr *common.Address, now time.Time) bool {
	c := v.Campaign
	if c == nil || addr == nil || v.IsCreator(addr) {
		return false
	}
	if v.MyContribution == nil || v.MyContribution.Sign() <= 0 {
		return false
	}
	return c.IsCancelled || (c.Expired(now) && !c.GoalReached)
}

// Projector reads the campaign count, then the selected campaign.
// Selected 0 picks the newest one.
type Projector struct {
	Selected uint64
	User     *common.Address
}

func (p Projector) Project(ctx context.Context, r contract.Caller) (View, error) {
	c := New(r)
	count, err := c.Count(ctx)
	if err != nil {
		return View{}, apperr.Wrap(apperr.ProviderError, "Failed to fetch campaign count", err)
	}
	v := View{Count: count, CampaignID: Clamp(p.Selected, count)}
	if v.CampaignID == 0 {
		return v, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	var camp Campaign
	g.Go(func() (err error) {
		camp, err = c.Campaign(gctx, v.CampaignID)
		return err
	})
	if p.User != nil {
		g.Go(func() error {
			// A failed lookup only hides the contribution line.
			if n, err := c.Contribution(gctx, v.CampaignID, *p.User); err == nil {
				v.MyContribution = n
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return View{}, apperr.Wrap(apperr.ProviderError, "Failed to fetch campaign data", err)
	}
	v.Campaign = &camp
	return v, nil
}

// Clamp keeps a selection inside [1, count]; 0 or out of range picks
// count.
func Clamp(selected, count uint64) uint64 {
	if count == 0 {
		return 0
	}
	if selected == 0 || selected > count {
		return count
	}
	return selected
}

func Prev(selected, count uint64) uint64 {
	if s := Clamp(selected, count); s > 1 {
		return s - 1
	}
	return Clamp(selected, count)
}

func Next(selected, count uint64) uint64 {
	if s := Clamp(selected, count); s < count {
		return s + 1
	}
	return Clamp(selected, count)
}
