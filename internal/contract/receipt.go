package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Receipt polling defaults.
const (
	DefaultPollInterval   = 2 * time.Second
	DefaultConfirmTimeout = 3 * time.Minute
)

// waitMined polls for the receipt of hash. When the transaction reverted it
// replays call at the receipt's block to recover the revert reason.
func waitMined(ctx context.Context, b Backend, hash common.Hash, call ethereum.CallMsg, poll, timeout time.Duration) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		receipt, err := b.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, replayRevert(ctx, b, hash, call, receipt)
			}
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			return nil, apperr.Wrap(apperr.ProviderError, "fetching receipt", err)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, apperr.Wrap(apperr.ProviderError,
					fmt.Sprintf("Transaction %s not mined within %s", hash.Hex(), timeout), ctx.Err())
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func replayRevert(ctx context.Context, b Backend, hash common.Hash, call ethereum.CallMsg, receipt *types.Receipt) error {
	rerr := &RevertError{Hash: hash}
	_, err := b.CallContract(ctx, call, receipt.BlockNumber)
	if err == nil {
		return rerr
	}
	var re *RevertError
	if errors.As(asRevert(err), &re) {
		rerr.Reason = re.Reason
		rerr.Data = re.Data
	}
	return rerr
}
