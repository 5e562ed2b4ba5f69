package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"go.uber.org/zap"
)

// Chain-switch outcomes reported to Coordinator.OnOutcome.
const (
	OutcomeAligned   = "aligned"
	OutcomeSwitched  = "switched"
	OutcomeAdded     = "added"
	OutcomeRejected  = "rejected"
	OutcomeAddFailed = "add_failed"
	OutcomeError     = "error"
)

const walletAbsentMsg = "No wallet detected. Please install MetaMask or a compatible wallet."

// Coordinator makes sure the wallet is on the network a write targets.
// It keeps no state between calls.
type Coordinator struct {
	Log       *zap.Logger
	OnOutcome func(outcome string)
}

// EnsureChain aligns p with d using a coordinator without hooks.
func EnsureChain(ctx context.Context, p Provider, d *network.Descriptor) error {
	return (&Coordinator{}).Ensure(ctx, p, d)
}

// Ensure switches the wallet to d, adding the chain first when the wallet
// does not know it. It returns nil only when the wallet reports d's chain.
func (c *Coordinator) Ensure(ctx context.Context, p Provider, d *network.Descriptor) error {
	outcome, err := c.ensure(ctx, p, d)
	c.logger().Debug("chain alignment",
		zap.String("network", string(d.Key)),
		zap.Int64("chain_id", d.ChainID),
		zap.String("outcome", outcome),
		zap.Error(err))
	if c.OnOutcome != nil {
		c.OnOutcome(outcome)
	}
	return err
}

func (c *Coordinator) ensure(ctx context.Context, p Provider, d *network.Descriptor) (string, error) {
	if p == nil {
		return OutcomeError, apperr.New(apperr.WalletAbsent, walletAbsentMsg)
	}

	current, err := ChainID(ctx, p)
	if err != nil {
		return OutcomeError, err
	}
	if current == d.ChainID {
		return OutcomeAligned, nil
	}

	outcome := OutcomeSwitched
	err = switchTo(ctx, p, d)
	switch {
	case err == nil:
	case isUnrecognizedChain(err):
		if _, addErr := p.Request(ctx, MethodAddChain, AddChainParamsFor(d)); addErr != nil {
			return OutcomeAddFailed, apperr.Wrap(apperr.ChainAddFailed,
				"Failed to add network to wallet: "+requestMessage(addErr), addErr)
		}
		outcome = OutcomeAdded
		// Some wallets switch as part of adding; only switch again if needed.
		if current, err = ChainID(ctx, p); err != nil {
			return OutcomeError, err
		}
		if current != d.ChainID {
			if err := switchTo(ctx, p, d); err != nil {
				return classifySwitch(err)
			}
		}
	default:
		return classifySwitch(err)
	}

	current, err = ChainID(ctx, p)
	if err != nil {
		return OutcomeError, err
	}
	if current != d.ChainID {
		return OutcomeError, apperr.New(apperr.ProviderError,
			fmt.Sprintf("Wallet is on chain %d, expected %d (%s)", current, d.ChainID, d.Name))
	}
	return outcome, nil
}

func switchTo(ctx context.Context, p Provider, d *network.Descriptor) error {
	_, err := p.Request(ctx, MethodSwitchChain, SwitchChainParams{ChainID: d.ChainIDHex()})
	return err
}

func classifySwitch(err error) (string, error) {
	if requestCode(err) == apperr.CodeUserRejected {
		return OutcomeRejected, apperr.Wrap(apperr.ChainSwitchRejected, "User rejected chain switch", err)
	}
	return OutcomeError, err
}

func isUnrecognizedChain(err error) bool {
	return requestCode(err) == apperr.CodeUnrecognizedChain ||
		strings.Contains(err.Error(), "Unrecognized chain")
}

func requestCode(err error) int {
	var re interface{ ErrorCode() int }
	if errors.As(err, &re) {
		return re.ErrorCode()
	}
	return 0
}

func requestMessage(err error) string {
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return err.Error()
}

func (c *Coordinator) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}
