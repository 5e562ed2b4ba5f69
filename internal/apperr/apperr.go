// Package apperr classifies failures from wallets, RPC endpoints and
// contracts into a small taxonomy and turns them into one-line messages.
package apperr

import (
	"context"
	"errors"
	"strings"
)

// Kind is the error taxonomy shown to users.
type Kind int

const (
	Unknown Kind = iota
	ConfigError
	WalletAbsent
	NotConnected
	ChainSwitchRejected
	ChainAddFailed
	ValidationError
	Reverted
	ProviderError
	UserRejected
)

var kindNames = map[Kind]string{
	Unknown:             "unknown",
	ConfigError:         "config",
	WalletAbsent:        "wallet-absent",
	NotConnected:        "not-connected",
	ChainSwitchRejected: "chain-switch-rejected",
	ChainAddFailed:      "chain-add-failed",
	ValidationError:     "validation",
	Reverted:            "reverted",
	ProviderError:       "provider",
	UserRejected:        "user-rejected",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Provider error codes (EIP-1193 / EIP-3326).
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnrecognizedChain = 4902
)

// Fallback is the message used when nothing better can be extracted.
const Fallback = "Transaction failed"

// Error is a classified error carrying a user-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies err under kind with a user-facing message.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// The interfaces below are satisfied by wallet.RequestError,
// go-ethereum's rpc.Error and contract.RevertError without this package
// importing any of them.
type coder interface {
	ErrorCode() int
}

type reasoner interface {
	RevertReason() string
}

// KindOf returns the taxonomy kind of err.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	var r reasoner
	if errors.As(err, &r) {
		return Reverted
	}
	var c coder
	if errors.As(err, &c) {
		switch c.ErrorCode() {
		case CodeUserRejected:
			return UserRejected
		case CodeUnauthorized:
			return NotConnected
		case 3:
			return Reverted
		}
		return ProviderError
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ProviderError
	}
	if _, ok := revertFromMessage(err.Error()); ok {
		return Reverted
	}
	return Unknown
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

var translations = []struct {
	needle string
	msg    string
}{
	{"Auction has ended", "Auction has ended. Refresh to see current status."},
	{"Auction already closed", "Auction has been closed by owner."},
	{"Bid too low", "Bid too low. Must exceed current highest bid."},
}

// Normalize extracts a one-line message from err. A structured revert
// reason wins over the error message, which wins over the fallback.
// Well-known revert reasons are rewritten to their terse forms.
func Normalize(err error) (string, Kind) {
	if err == nil {
		return "", Unknown
	}
	kind := KindOf(err)

	var ae *Error
	if errors.As(err, &ae) && ae.Msg != "" && kind != Reverted && kind != Unknown {
		// Validation and wallet messages are already written for users.
		return ae.Msg, kind
	}

	msg := ""
	var r reasoner
	if errors.As(err, &r) {
		msg = r.RevertReason()
	}
	if msg == "" {
		if reason, ok := revertFromMessage(err.Error()); ok {
			msg = reason
		}
	}
	if msg == "" {
		var c coder
		if errors.As(err, &c) {
			switch c.ErrorCode() {
			case CodeUserRejected:
				msg = "Transaction rejected in wallet"
			case CodeUnrecognizedChain:
				msg = "Network not recognized by wallet"
			}
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		return Fallback, kind
	}
	return translate(msg), kind
}

// Message is Normalize without the kind.
func Message(err error) string {
	msg, _ := Normalize(err)
	return msg
}

func translate(msg string) string {
	for _, t := range translations {
		if strings.Contains(msg, t.needle) {
			return t.msg
		}
	}
	return msg
}

const revertPrefix = "execution reverted"

// revertFromMessage pulls the reason out of node messages such as
// `execution reverted: Bid too low`.
func revertFromMessage(msg string) (string, bool) {
	idx := strings.Index(msg, revertPrefix)
	if idx == -1 {
		return "", false
	}
	rest := strings.TrimSpace(msg[idx+len(revertPrefix):])
	rest = strings.TrimPrefix(rest, ":")
	rest = strings.Trim(strings.TrimSpace(rest), `"'`)
	if rest == "" {
		return "Transaction reverted", true
	}
	return rest, true
}
