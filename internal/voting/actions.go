package voting

import (
	"context"

	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	"github.com/Mohsinsiddi/bnbpanel/internal/validate"
)

// Vote casts a vote for the candidate at index.
func Vote(index string) panel.Builder {
	return func(context.Context) (txflow.Action, error) {
		i, err := validate.Vote(index)
		if err != nil {
			return txflow.Action{}, err
		}
		return txflow.Call("vote", "Cast vote for candidate #"+i.String(), nil, i), nil
	}
}

// Start opens the ballot. Owner only.
func Start() panel.Builder {
	return panel.Fixed(txflow.Call("startVoting", "Voting opened", nil))
}

// End closes the ballot. Owner only.
func End() panel.Builder {
	return panel.Fixed(txflow.Call("endVoting", "Voting closed", nil))
}
