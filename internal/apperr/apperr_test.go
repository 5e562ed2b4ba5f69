package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/stretchr/testify/assert"
)

type codeErr struct {
	code int
	msg  string
}

func (e codeErr) Error() string  { return e.msg }
func (e codeErr) ErrorCode() int { return e.code }

type revertErr struct{ reason string }

func (e revertErr) Error() string        { return "execution reverted" }
func (e revertErr) RevertReason() string { return e.reason }

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"nil", nil, apperr.Unknown},
		{"classified", apperr.New(apperr.WalletAbsent, "x"), apperr.WalletAbsent},
		{"wrapped classified", fmt.Errorf("outer: %w", apperr.New(apperr.ConfigError, "x")), apperr.ConfigError},
		{"revert reason", revertErr{"Bid too low"}, apperr.Reverted},
		{"4001", codeErr{4001, "User denied"}, apperr.UserRejected},
		{"4100", codeErr{4100, "unauthorized"}, apperr.NotConnected},
		{"rpc code 3", codeErr{3, "execution reverted"}, apperr.Reverted},
		{"other code", codeErr{-32000, "nonce too low"}, apperr.ProviderError},
		{"deadline", context.DeadlineExceeded, apperr.ProviderError},
		{"revert text", errors.New("call failed: execution reverted: Not owner"), apperr.Reverted},
		{"plain", errors.New("boom"), apperr.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.KindOf(tt.err))
		})
	}
}

func TestNormalizePrecedence(t *testing.T) {
	// Structured reason beats message.
	msg, kind := apperr.Normalize(revertErr{"Only owner"})
	assert.Equal(t, "Only owner", msg)
	assert.Equal(t, apperr.Reverted, kind)

	// Message when there is no reason.
	msg, _ = apperr.Normalize(errors.New("insufficient funds for gas"))
	assert.Equal(t, "insufficient funds for gas", msg)

	// Fallback when the error carries nothing.
	msg, _ = apperr.Normalize(errors.New(""))
	assert.Equal(t, apperr.Fallback, msg)
	msg, _ = apperr.Normalize(revertErr{})
	assert.Equal(t, "Transaction reverted", msg)
}

func TestNormalizeTranslations(t *testing.T) {
	tests := []struct {
		in   error
		want string
	}{
		{revertErr{"Auction has ended"}, "Auction has ended. Refresh to see current status."},
		{revertErr{"Auction already closed"}, "Auction has been closed by owner."},
		{errors.New(`execution reverted: "Bid too low"`), "Bid too low. Must exceed current highest bid."},
		{errors.New("execution reverted:"), "Transaction reverted"},
	}
	for _, tt := range tests {
		msg, _ := apperr.Normalize(tt.in)
		assert.Equal(t, tt.want, msg)
	}
}

func TestNormalizeKeepsUserMessages(t *testing.T) {
	err := apperr.New(apperr.ValidationError, "Auction has ended. Cannot place bid.")
	msg, kind := apperr.Normalize(err)
	assert.Equal(t, "Auction has ended. Cannot place bid.", msg)
	assert.Equal(t, apperr.ValidationError, kind)

	err = apperr.New(apperr.ChainSwitchRejected, "User rejected chain switch")
	msg, kind = apperr.Normalize(fmt.Errorf("write: %w", err))
	assert.Equal(t, "User rejected chain switch", msg)
	assert.Equal(t, apperr.ChainSwitchRejected, kind)
}

func TestNormalizeProviderCodes(t *testing.T) {
	msg, kind := apperr.Normalize(codeErr{4001, ""})
	assert.Equal(t, "Transaction rejected in wallet", msg)
	assert.Equal(t, apperr.UserRejected, kind)

	msg, _ = apperr.Normalize(codeErr{4902, "Unrecognized chain ID"})
	assert.Equal(t, "Network not recognized by wallet", msg)
}

func TestErrorString(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	e := apperr.Wrap(apperr.ProviderError, "reading auction", inner)
	assert.Equal(t, "reading auction: dial tcp: refused", e.Error())
	assert.ErrorIs(t, e, inner)
	assert.Equal(t, "provider", apperr.ProviderError.String())
	assert.True(t, apperr.Is(e, apperr.ProviderError))
}
