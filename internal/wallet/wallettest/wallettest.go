// Package wallettest provides wallet doubles shared by package tests.
package wallettest

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Hardhat/Anvil account #0. Never fund it on a real network.
const (
	PrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	Address    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// Call is one recorded provider request.
type Call struct {
	Method string
	Params []any
}

// Recorder wraps a provider and records every request in order.
type Recorder struct {
	wallet.Provider

	mu    sync.Mutex
	calls []Call

	// ChainAtSend holds the wallet's chain id at each eth_sendTransaction.
	ChainAtSend []int64
}

// NewRecorder wraps p.
func NewRecorder(p wallet.Provider) *Recorder {
	return &Recorder{Provider: p}
}

// Request records the call and forwards it.
func (r *Recorder) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if method == wallet.MethodSendTransaction {
		if id, err := wallet.ChainID(ctx, r.Provider); err == nil {
			r.mu.Lock()
			r.ChainAtSend = append(r.ChainAtSend, id)
			r.mu.Unlock()
		}
	}
	r.mu.Lock()
	r.calls = append(r.calls, Call{Method: method, Params: params})
	r.mu.Unlock()
	return r.Provider.Request(ctx, method, params...)
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Methods returns the recorded method names.
func (r *Recorder) Methods() []string {
	var out []string
	for _, c := range r.Calls() {
		out = append(out, c.Method)
	}
	return out
}

// Count returns how many times method was requested.
func (r *Recorder) Count(method string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Backend is an in-memory TxBackend that accepts every transaction.
type Backend struct {
	mu          sync.Mutex
	Sent        []*types.Transaction
	Nonce       uint64
	Gas         uint64
	Tip         *big.Int
	BaseFee     *big.Int
	EstimateErr error
	SendErr     error
}

// NewBackend returns a backend with sensible fee values.
func NewBackend() *Backend {
	return &Backend{Gas: 100_000, Tip: big.NewInt(1_000_000_000), BaseFee: big.NewInt(1_000_000_000)}
}

// Dialer returns a wallet.DialFunc that always yields b.
func (b *Backend) Dialer() wallet.DialFunc {
	return func(context.Context, string) (wallet.TxBackend, error) { return b, nil }
}

func (b *Backend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Nonce, nil
}

func (b *Backend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return b.Tip, nil
}

func (b *Backend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: b.BaseFee}, nil
}

func (b *Backend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	if b.EstimateErr != nil {
		return 0, b.EstimateErr
	}
	return b.Gas, nil
}

func (b *Backend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if b.SendErr != nil {
		return b.SendErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sent = append(b.Sent, tx)
	b.Nonce++
	return nil
}

// LastSent returns the most recent transaction, or nil.
func (b *Backend) LastSent() *types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Sent) == 0 {
		return nil
	}
	return b.Sent[len(b.Sent)-1]
}

// NewSigningWallet returns a signer over the well-known test key kept in an
// in-memory keystore.
func NewSigningWallet() *wallet.Signer {
	ks := wallet.NewInMemoryKeystore()
	m := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(ks))
	if err := m.AddWithKey("test", PrivKeyHex); err != nil {
		panic(err)
	}
	w, _ := m.Get("test")
	return wallet.NewSigner(w, ks)
}
