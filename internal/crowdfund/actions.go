package crowdfund

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	"github.com/Mohsinsiddi/bnbpanel/internal/validate"
)

// Form defaults for the fund and create inputs.
const (
	DefaultFundAmount = "0.01"
	DefaultGoal       = "1"
	DefaultDays       = "30"
)

// Form is the create-campaign input.
type Form struct {
	Title       string
	Description string
	ImageURL    string
	Goal        string
	Days        string
}

// NewForm returns an empty form carrying the default goal and duration.
func NewForm() Form {
	return Form{Goal: DefaultGoal, Days: DefaultDays}
}

func noCampaign() error {
	return &validate.Error{Msg: "No campaign selected", Window: validate.WindowState}
}

func withPending(a txflow.Action, pending string) txflow.Action {
	a.Pending = pending
	return a
}

// Fund contributes amount to the displayed campaign.
func Fund(v View, amount string) panel.Builder {
	return func(context.Context) (txflow.Action, error) {
		if v.CampaignID == 0 {
			return txflow.Action{}, noCampaign()
		}
		wei, err := validate.FundCampaign(amount)
		if err != nil {
			return txflow.Action{}, err
		}
		id := new(big.Int).SetUint64(v.CampaignID)
		return withPending(txflow.Call("fundCampaign", "Campaign funded!", wei, id), "Funding campaign…"), nil
	}
}

// Create opens a new campaign from f.
func Create(f Form) panel.Builder {
	return func(context.Context) (txflow.Action, error) {
		c, err := validate.CreateCampaign(f.Title, f.Description, f.ImageURL, f.Goal, f.Days)
		if err != nil {
			return txflow.Action{}, err
		}
		a := txflow.Call("createCampaign", "Campaign created!", nil,
			c.Title, c.Description, c.ImageURL, c.Goal, c.DurationDays)
		return withPending(a, "Creating campaign…"), nil
	}
}

// Withdraw releases a funded campaign's balance to its creator.
func Withdraw(v View) panel.Builder {
	return campaignCall(v, "withdrawFunds", "Funds withdrawn!", "Withdrawing funds…")
}

// Refund returns the caller's contribution.
func Refund(v View) panel.Builder {
	return campaignCall(v, "claimRefund", "Refund claimed!", "Claiming refund…")
}

// Cancel stops a campaign. Creator only.
func Cancel(v View) panel.Builder {
	return campaignCall(v, "cancelCampaign", "Campaign cancelled!", "Cancelling campaign…")
}

func campaignCall(v View, method, success, pending string) panel.Builder {
	return func(context.Context) (txflow.Action, error) {
		if v.CampaignID == 0 {
			return txflow.Action{}, noCampaign()
		}
		a := txflow.Call(method, success, nil, new(big.Int).SetUint64(v.CampaignID))
		return withPending(a, pending), nil
	}
}
