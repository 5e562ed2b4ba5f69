// Package validate runs the pre-flight checks that mirror contract
// requires, so obviously doomed input never reaches the wallet.
package validate

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

// How long a rejection stays visible. Malformed input clears faster than
// a check against chain state.
const (
	WindowInput = 3 * time.Second
	WindowState = 4 * time.Second
)

// Error is a rejected input.
type Error struct {
	Msg    string
	Window time.Duration
}

func (e *Error) Error() string { return e.Msg }

// DisplayWindow reports how long the message should stay on screen.
func (e *Error) DisplayWindow() time.Duration {
	if e.Window == 0 {
		return WindowInput
	}
	return e.Window
}

// Unwrap classifies the rejection as apperr.ValidationError.
func (e *Error) Unwrap() error {
	return apperr.New(apperr.ValidationError, e.Msg)
}

func input(msg string) error { return &Error{Msg: msg, Window: WindowInput} }
func state(msg string) error { return &Error{Msg: msg, Window: WindowState} }

// IsValidation reports whether err came from this package.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// PlaceBid accepts a bid only when it is a positive amount, the auction is
// still running and the bid beats highestBid. It returns the bid in base
// units.
func PlaceBid(amount string, highestBid *big.Int, ended bool, secondsLeft int64) (*big.Int, error) {
	if strings.TrimSpace(amount) == "" {
		return nil, input("Please enter a bid amount")
	}
	v, err := units.ParseEther(amount)
	if err != nil || v.Sign() <= 0 {
		return nil, input("Bid amount must be a positive number")
	}
	if ended || secondsLeft <= 0 {
		return nil, state("Auction has ended. Cannot place bid.")
	}
	if highestBid != nil && v.Cmp(highestBid) <= 0 {
		return nil, state(fmt.Sprintf("Bid must exceed %s BNB (current highest bid)", units.FormatEther(highestBid)))
	}
	return v, nil
}

// Vote parses a candidate index. Range and double voting are left to the
// contract.
func Vote(index string) (*big.Int, error) {
	if strings.TrimSpace(index) == "" {
		return nil, input("Please enter a candidate index")
	}
	v, err := units.ParseInteger(index)
	if err != nil {
		return nil, input("Candidate index must be a non-negative number")
	}
	return v, nil
}

// CandidateIndex parses the index of a candidate lookup.
func CandidateIndex(index string) (*big.Int, error) {
	if strings.TrimSpace(index) == "" {
		return nil, input("Please enter a candidate index")
	}
	v, err := units.ParseInteger(index)
	if err != nil {
		return nil, input("Index must be a non-negative number")
	}
	return v, nil
}

// BuyTickets checks the round is open and qty is a positive whole number.
func BuyTickets(qty string, isOpen bool) (*big.Int, error) {
	if !isOpen {
		return nil, state("Round is not open for ticket sales")
	}
	v, err := units.ParseInteger(qty)
	if err != nil || v.Sign() <= 0 {
		return nil, input("Ticket quantity must be a positive whole number")
	}
	return v, nil
}

// CreateRound parses a ticket price and a duration in seconds.
func CreateRound(price, durationSecs string) (*big.Int, *big.Int, error) {
	if strings.TrimSpace(price) == "" {
		return nil, nil, input("Please enter a ticket price")
	}
	p, err := units.ParseEther(price)
	if err != nil {
		return nil, nil, input("Ticket price must be a valid amount")
	}
	d, err := units.ParseInteger(durationSecs)
	if err != nil || d.Sign() <= 0 {
		return nil, nil, input("Duration must be a positive number of seconds")
	}
	return p, d, nil
}

// FundCampaign parses a contribution amount.
func FundCampaign(amount string) (*big.Int, error) {
	if strings.TrimSpace(amount) == "" {
		return nil, input("Please enter an amount")
	}
	v, err := units.ParseEther(amount)
	if err != nil || v.Sign() <= 0 {
		return nil, input("Amount must be a positive number")
	}
	return v, nil
}

// Campaign is a validated create-campaign form.
type Campaign struct {
	Title        string
	Description  string
	ImageURL     string
	Goal         *big.Int
	DurationDays *big.Int
}

// CreateCampaign checks the create form: a title, a positive goal and a
// positive whole number of days.
func CreateCampaign(title, description, imageURL, goal, days string) (*Campaign, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, input("Campaign title is required")
	}
	g, err := units.ParseEther(goal)
	if err != nil || g.Sign() <= 0 {
		return nil, input("Goal must be a positive amount")
	}
	d, err := units.ParseInteger(days)
	if err != nil || d.Sign() <= 0 {
		return nil, input("Duration must be a positive number of days")
	}
	return &Campaign{
		Title:        title,
		Description:  strings.TrimSpace(description),
		ImageURL:     strings.TrimSpace(imageURL),
		Goal:         g,
		DurationDays: d,
	}, nil
}

// LookupAddress picks the address a lookup targets: the typed one, else
// the connected account.
func LookupAddress(typed string, connected *common.Address) (common.Address, error) {
	typed = strings.TrimSpace(typed)
	if typed == "" {
		if connected == nil {
			return common.Address{}, input("Enter an address or connect your wallet")
		}
		return *connected, nil
	}
	if !common.IsHexAddress(typed) {
		return common.Address{}, input("Invalid address: " + typed)
	}
	return common.HexToAddress(typed), nil
}
