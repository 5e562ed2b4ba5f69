package auction

import (
	"context"

	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	"github.com/Mohsinsiddi/bnbpanel/internal/units"
	"github.com/Mohsinsiddi/bnbpanel/internal/validate"
)

// PlaceBid bids amount against v. secondsLeft is the displayed countdown,
// which may be ahead of v.
func PlaceBid(amount string, v View, secondsLeft int64) panel.Builder {
	return func(context.Context) (txflow.Action, error) {
		bid, err := validate.PlaceBid(amount, v.HighestBid, v.Ended, secondsLeft)
		if err != nil {
			return txflow.Action{}, err
		}
		return txflow.Call("placeBid", "Bid placed: "+units.Canonical(amount)+" BNB", bid), nil
	}
}

// Withdraw pulls the caller's pending returns.
func Withdraw() panel.Builder {
	return panel.Fixed(txflow.Call("withdraw", "Withdrawn pending returns", nil))
}

// EndEarly closes the auction. Owner only; a non-owner gets the revert.
func EndEarly() panel.Builder {
	return panel.Fixed(txflow.Call("endEarly", "Auction ended early", nil))
}

// WithdrawProceeds pays the winning bid to the owner.
func WithdrawProceeds() panel.Builder {
	return panel.Fixed(txflow.Call("withdrawProceeds", "Proceeds withdrawn", nil))
}
