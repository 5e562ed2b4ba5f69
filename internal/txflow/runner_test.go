package txflow_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract/contracttest"
	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet/wallettest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	chain   *contracttest.Chain
	rec     *wallettest.Recorder
	binder  *contract.Binder
	machine *txflow.Machine
	runner  *txflow.Runner
	log     *phaseLog

	mu       sync.Mutex
	outcomes []string
}

func newFixture(t *testing.T, confirm wallet.ConfirmFunc) *fixture {
	t.Helper()
	reg := network.NewRegistry()
	d := reg.MustGet(network.Testnet)
	k := contract.MustKind(contract.AuctionID)
	chain := contracttest.NewChain(k, *d.ContractAddress(network.Auction), d.ChainID)

	opts := []wallet.LocalOption{wallet.WithActiveChain(d), wallet.WithDialer(chain.Dialer())}
	if confirm != nil {
		opts = append(opts, wallet.WithConfirm(confirm))
	}
	rec := wallettest.NewRecorder(wallet.NewLocalProvider(wallettest.NewSigningWallet(), opts...))

	f := &fixture{
		chain:   chain,
		rec:     rec,
		machine: txflow.NewMachine(),
		log:     &phaseLog{},
	}
	f.binder = contract.NewBinder(d, k, chain,
		contract.WithProvider(rec),
		contract.WithReceiptPolling(5*time.Millisecond, time.Second))
	f.machine.OnChange(f.log.record)
	f.runner = &txflow.Runner{
		Machine: f.machine,
		Observe: func(method, outcome string) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.outcomes = append(f.outcomes, method+":"+outcome)
		},
	}
	return f
}

func (f *fixture) observed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.outcomes...)
}

func TestRunSuccessRefreshes(t *testing.T) {
	f := newFixture(t, nil)
	f.chain.Tx("placeBid", func(common.Address, *big.Int, []any) error { return nil })

	refreshed := 0
	tk, err := f.runner.Run(context.Background(), txflow.WriterOf(f.binder),
		txflow.Call("placeBid", "Bid placed: 0.02 BNB", big.NewInt(2e16)),
		func(context.Context) { refreshed++ })
	require.NoError(t, err)

	st := f.machine.Status()
	assert.Equal(t, txflow.Success, st.Phase)
	assert.Equal(t, "Bid placed: 0.02 BNB", st.Message)
	assert.NotEmpty(t, st.Hash)
	assert.Equal(t, 1, refreshed)
	assert.Equal(t, txflow.WindowStandard, tk.After)
	assert.Equal(t, []string{"placeBid:success"}, f.observed())
	validSequence(t, f.log.get())
}

func TestRunRevertShowsTranslatedReason(t *testing.T) {
	f := newFixture(t, nil)
	f.chain.Tx("placeBid", func(common.Address, *big.Int, []any) error {
		return contracttest.Revert("Auction has ended")
	})

	refreshed := false
	_, err := f.runner.Run(context.Background(), txflow.WriterOf(f.binder),
		txflow.Call("placeBid", "ok", big.NewInt(1)),
		func(context.Context) { refreshed = true })
	require.Error(t, err)

	st := f.machine.Status()
	assert.Equal(t, txflow.Error, st.Phase)
	assert.Equal(t, "Auction has ended. Refresh to see current status.", st.Message)
	assert.Equal(t, apperr.Reverted, st.Kind)
	assert.False(t, refreshed)
	assert.Equal(t, []string{"placeBid:reverted"}, f.observed())
}

func TestRunUserRejectsSignature(t *testing.T) {
	f := newFixture(t, func(string) bool { return false })
	f.chain.Tx("withdraw", func(common.Address, *big.Int, []any) error { return nil })

	_, err := f.runner.Run(context.Background(), txflow.WriterOf(f.binder),
		txflow.Call("withdraw", "ok", nil), nil)
	require.Error(t, err)
	assert.Equal(t, "Transaction rejected in wallet", f.machine.Status().Message)
	assert.Equal(t, []string{"withdraw:rejected"}, f.observed())
	assert.Empty(t, f.chain.Sent)
}

func TestRunWhilePendingNeverPromptsWallet(t *testing.T) {
	f := newFixture(t, nil)
	f.chain.Tx("placeBid", func(common.Address, *big.Int, []any) error { return nil })
	f.chain.Hold()

	done := make(chan error, 1)
	go func() {
		_, err := f.runner.Run(context.Background(), txflow.WriterOf(f.binder),
			txflow.Call("placeBid", "ok", big.NewInt(1)), nil)
		done <- err
	}()

	require.Eventually(t, func() bool { return f.machine.Status().Hash != "" }, time.Second, 5*time.Millisecond)
	sends := f.rec.Count(wallet.MethodSendTransaction)

	_, err := f.runner.Run(context.Background(), txflow.WriterOf(f.binder),
		txflow.Call("placeBid", "ok", big.NewInt(2)), nil)
	assert.ErrorIs(t, err, txflow.ErrBusy)
	assert.Equal(t, sends, f.rec.Count(wallet.MethodSendTransaction))

	f.chain.Mine()
	require.NoError(t, <-done)
	assert.Equal(t, txflow.Success, f.machine.Status().Phase)
	validSequence(t, f.log.get())
}

func TestRunWriterFailure(t *testing.T) {
	m := txflow.NewMachine()
	r := &txflow.Runner{Machine: m}
	write := func(context.Context) (contract.Transactor, error) {
		return nil, apperr.New(apperr.NotConnected, "Please connect your wallet first")
	}
	invoked := false
	a := txflow.Action{Method: "vote", Invoke: func(context.Context, contract.Transactor) (*contract.PendingTx, error) {
		invoked = true
		return nil, errors.New("unreachable")
	}}

	_, err := r.Run(context.Background(), write, a, nil)
	require.Error(t, err)
	assert.False(t, invoked)
	assert.Equal(t, "Please connect your wallet first", m.Status().Message)
}
