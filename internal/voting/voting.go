// Package voting reads the candidate-list voting contract and prepares its
// writes.
package voting

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// Contract is a typed read binding.
type Contract struct {
	r contract.Caller
}

// New binds r.
func New(r contract.Caller) *Contract { return &Contract{r: r} }

// Candidate is one entry of getCandidates().
type Candidate struct {
	Name      string
	VoteCount *big.Int
}

// Winner is the getWinner() pair. Ties are resolved by the contract.
type Winner struct {
	Name  string
	Votes *big.Int
}

func (c *Contract) Candidates(ctx context.Context) ([]Candidate, error) {
	out, err := c.r.Call(ctx, "getCandidates")
	if err != nil {
		return nil, err
	}
	return contract.Out[[]Candidate](out, 0)
}

// Candidate looks up one candidate by index.
func (c *Contract) Candidate(ctx context.Context, index *big.Int) (Candidate, error) {
	out, err := c.r.Call(ctx, "candidates", index)
	if err != nil {
		return Candidate{}, err
	}
	var cand Candidate
	if cand.Name, err = contract.Out[string](out, 0); err != nil {
		return cand, err
	}
	cand.VoteCount, err = contract.Out[*big.Int](out, 1)
	return cand, err
}

func (c *Contract) TotalVotes(ctx context.Context) (*big.Int, error) {
	out, err := c.r.Call(ctx, "totalVotes")
	if err != nil {
		return nil, err
	}
	return contract.Out[*big.Int](out, 0)
}

func (c *Contract) Winner(ctx context.Context) (Winner, error) {
	out, err := c.r.Call(ctx, "getWinner")
	if err != nil {
		return Winner{}, err
	}
	var w Winner
	if w.Name, err = contract.Out[string](out, 0); err != nil {
		return w, err
	}
	w.Votes, err = contract.Out[*big.Int](out, 1)
	return w, err
}

func (c *Contract) Owner(ctx context.Context) (common.Address, error) {
	out, err := c.r.Call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return contract.Out[common.Address](out, 0)
}

func (c *Contract) VotingOpen(ctx context.Context) (bool, error) {
	out, err := c.r.Call(ctx, "votingOpen")
	if err != nil {
		return false, err
	}
	return contract.Out[bool](out, 0)
}

// HasVoted reports whether who already voted.
func (c *Contract) HasVoted(ctx context.Context, who common.Address) (bool, error) {
	out, err := c.r.Call(ctx, "hasVoted", who)
	if err != nil {
		return false, err
	}
	return contract.Out[bool](out, 0)
}

// View is what the panel shows.
type View struct {
	Candidates []Candidate
	TotalVotes *big.Int
	Winner     Winner
	Owner      common.Address
	VotingOpen bool
}

// IsOwner reports whether addr owns the ballot.
func (v View) IsOwner(addr *common.Address) bool {
	return addr != nil && *addr == v.Owner
}

// Share is a candidate's fraction of all votes, 0 with no votes cast.
func (v View) Share(i int) float64 {
	if i < 0 || i >= len(v.Candidates) || v.TotalVotes == nil || v.TotalVotes.Sign() == 0 {
		return 0
	}
	num, _ := new(big.Float).SetInt(v.Candidates[i].VoteCount).Float64()
	den, _ := new(big.Float).SetInt(v.TotalVotes).Float64()
	return num / den
}

// Project reads the five voting getters in parallel.
func Project(ctx context.Context, r contract.Caller) (View, error) {
	c := New(r)
	var v View

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		v.Candidates, err = c.Candidates(gctx)
		return err
	})
	g.Go(func() (err error) {
		v.TotalVotes, err = c.TotalVotes(gctx)
		return err
	})
	g.Go(func() (err error) {
		v.Winner, err = c.Winner(gctx)
		return err
	})
	g.Go(func() (err error) {
		v.Owner, err = c.Owner(gctx)
		return err
	})
	g.Go(func() (err error) {
		v.VotingOpen, err = c.VotingOpen(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}
	return v, nil
}
