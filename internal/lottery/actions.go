package lottery

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	"github.com/Mohsinsiddi/bnbpanel/internal/validate"
)

func noRound() error {
	return &validate.Error{Msg: "No lottery round selected", Window: validate.WindowState}
}

// BuyTickets buys qty tickets in the displayed round, paying
// ticketPrice × qty. When the view has no price it is read from rounds(id).
func BuyTickets(r contract.Caller, v View, qty string) panel.Builder {
	return func(ctx context.Context) (txflow.Action, error) {
		if v.RoundID == 0 {
			return txflow.Action{}, noRound()
		}
		n, err := validate.BuyTickets(qty, v.IsOpen())
		if err != nil {
			return txflow.Action{}, err
		}
		var price *big.Int
		if v.Round != nil {
			price = v.Round.TicketPrice
		}
		if price == nil {
			if price, err = New(r).TicketPrice(ctx, v.RoundID); err != nil {
				return txflow.Action{}, err
			}
		}
		total := new(big.Int).Mul(price, n)
		round := new(big.Int).SetUint64(v.RoundID)
		return txflow.Call("buyTickets", fmt.Sprintf("Purchased %s ticket(s)!", n.String()), total, round, n), nil
	}
}

// CreateRound opens a new round. Owner only.
func CreateRound(price, durationSecs string) panel.Builder {
	return func(context.Context) (txflow.Action, error) {
		p, d, err := validate.CreateRound(price, durationSecs)
		if err != nil {
			return txflow.Action{}, err
		}
		return txflow.Call("createRound", "New round created!", nil, p, d), nil
	}
}

// CloseRound stops ticket sales in the displayed round. Owner only.
func CloseRound(v View) panel.Builder {
	return roundCall("closeRound", "Round closed!", v)
}

// PickWinner draws the displayed round. Owner only.
func PickWinner(v View) panel.Builder {
	return roundCall("pickWinner", "Winner picked!", v)
}

func roundCall(method, success string, v View) panel.Builder {
	return func(context.Context) (txflow.Action, error) {
		if v.RoundID == 0 {
			return txflow.Action{}, noRound()
		}
		return txflow.Call(method, success, nil, new(big.Int).SetUint64(v.RoundID)), nil
	}
}
