package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Messages shown when a handle cannot be built.
const (
	msgNoAddress    = "No contract address specified"
	msgNotConnected = "Please connect your wallet first"
	msgNoWallet     = "No wallet detected. Please install MetaMask or a compatible wallet."
)

// Backend is the read side of a network RPC: eth_call and receipts.
// *ethclient.Client satisfies it.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Dial connects to a network's RPC endpoint.
func Dial(ctx context.Context, d *network.Descriptor) (*ethclient.Client, error) {
	c, err := ethclient.DialContext(ctx, d.RPCURL)
	if err != nil {
		return nil, apperr.Wrap(apperr.ProviderError, "connecting to "+d.Name, err)
	}
	return c, nil
}

// Caller invokes read-only methods.
type Caller interface {
	Call(ctx context.Context, method string, args ...any) ([]any, error)
}

// Transactor submits state-changing calls.
type Transactor interface {
	Transact(ctx context.Context, method string, value *big.Int, args ...any) (*PendingTx, error)
	From() common.Address
}

// Binder builds read and write handles for one contract on one network.
type Binder struct {
	network  *network.Descriptor
	kind     *Kind
	address  *common.Address
	backend  Backend
	provider wallet.Provider
	coord    *wallet.Coordinator
	poll     time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

// BinderOption configures a Binder.
type BinderOption func(*Binder)

// WithAddress overrides the registry address. An empty string keeps it.
func WithAddress(addr string) BinderOption {
	return func(b *Binder) {
		if addr != "" {
			a := common.HexToAddress(addr)
			b.address = &a
		}
	}
}

// WithProvider sets the wallet used for writes.
func WithProvider(p wallet.Provider) BinderOption {
	return func(b *Binder) { b.provider = p }
}

// WithCoordinator sets the chain-switch coordinator used before writes.
func WithCoordinator(c *wallet.Coordinator) BinderOption {
	return func(b *Binder) { b.coord = c }
}

// WithReceiptPolling sets how often and how long to wait for receipts.
// Zero values keep the defaults.
func WithReceiptPolling(interval, timeout time.Duration) BinderOption {
	return func(b *Binder) {
		if interval > 0 {
			b.poll = interval
		}
		if timeout > 0 {
			b.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) BinderOption {
	return func(b *Binder) { b.log = l }
}

// NewBinder creates a binder for kind on d, reading through backend.
func NewBinder(d *network.Descriptor, kind *Kind, backend Backend, opts ...BinderOption) *Binder {
	b := &Binder{
		network: d,
		kind:    kind,
		address: d.ContractAddress(kind.Feature),
		backend: backend,
		coord:   &wallet.Coordinator{},
		poll:    DefaultPollInterval,
		timeout: DefaultConfirmTimeout,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Network returns the bound network.
func (b *Binder) Network() *network.Descriptor { return b.network }

// Kind returns the bound contract kind.
func (b *Binder) Kind() *Kind { return b.kind }

// Address returns the contract address, or nil when none is configured.
func (b *Binder) Address() *common.Address { return b.address }

// Read returns a handle for view calls. It never touches the wallet.
func (b *Binder) Read() (*Reader, error) {
	if b.address == nil {
		return nil, apperr.New(apperr.ConfigError, msgNoAddress)
	}
	return &Reader{kind: b.kind, addr: *b.address, backend: b.backend}, nil
}

// Write returns a handle bound to the wallet's active account after making
// sure the wallet is on the binder's network.
func (b *Binder) Write(ctx context.Context) (*Writer, error) {
	if b.address == nil {
		return nil, apperr.New(apperr.ConfigError, msgNoAddress)
	}
	if b.provider == nil {
		return nil, apperr.New(apperr.WalletAbsent, msgNoWallet)
	}
	accounts, err := wallet.Accounts(ctx, b.provider)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, apperr.New(apperr.NotConnected, msgNotConnected)
	}
	if err := b.coord.Ensure(ctx, b.provider, b.network); err != nil {
		return nil, err
	}
	return &Writer{
		kind:     b.kind,
		addr:     *b.address,
		from:     accounts[0],
		provider: b.provider,
		backend:  b.backend,
		poll:     b.poll,
		timeout:  b.timeout,
		log:      b.log.With(zap.String("contract", b.kind.ID), zap.String("network", string(b.network.Key))),
	}, nil
}

// Reader performs eth_call against the network RPC.
type Reader struct {
	kind    *Kind
	addr    common.Address
	backend Backend
}

// Call packs method(args), executes it at the latest block and unpacks
// the return values.
func (r *Reader) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := r.kind.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}
	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &r.addr, Data: data}, nil)
	if err != nil {
		err = asRevert(err)
		var re *RevertError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.ProviderError, "calling "+method, err)
	}
	if len(out) == 0 && len(r.kind.ABI.Methods[method].Outputs) > 0 {
		return nil, apperr.New(apperr.ConfigError,
			fmt.Sprintf("No %s contract deployed at %s", r.kind.ID, r.addr.Hex()))
	}
	vals, err := r.kind.ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", method, err)
	}
	return vals, nil
}

// Writer submits transactions through the wallet.
type Writer struct {
	kind     *Kind
	addr     common.Address
	from     common.Address
	provider wallet.Provider
	backend  Backend
	poll     time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

// From returns the account the wallet signs with.
func (w *Writer) From() common.Address { return w.from }

// Transact packs method(args) and asks the wallet to send it with value
// attached. The returned PendingTx carries the hash as soon as the wallet
// hands it back.
func (w *Writer) Transact(ctx context.Context, method string, value *big.Int, args ...any) (*PendingTx, error) {
	data, err := w.kind.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}
	req := wallet.TxRequest{From: w.from, To: w.addr, Data: data}
	if value != nil && value.Sign() > 0 {
		req.Value = (*hexutil.Big)(value)
	}

	w.log.Debug("submitting transaction",
		zap.String("method", method),
		zap.String("selector", hexutil.Encode(data[:4])),
		zap.Stringer("value", valueOrZero(value)))

	hash, err := wallet.SendTransaction(ctx, w.provider, req)
	if err != nil {
		return nil, asRevert(err)
	}
	w.log.Info("transaction submitted", zap.String("method", method), zap.String("hash", hash.Hex()))

	call := ethereum.CallMsg{From: w.from, To: &w.addr, Data: data, Value: valueOrZero(value)}
	return &PendingTx{
		Hash:   hash,
		Method: method,
		wait: func(ctx context.Context) (*types.Receipt, error) {
			return waitMined(ctx, w.backend, hash, call, w.poll, w.timeout)
		},
	}, nil
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// PendingTx is a submitted transaction.
type PendingTx struct {
	Hash   common.Hash
	Method string
	wait   func(ctx context.Context) (*types.Receipt, error)
}

// NewPendingTx builds a PendingTx around a custom wait function.
func NewPendingTx(hash common.Hash, method string, wait func(ctx context.Context) (*types.Receipt, error)) *PendingTx {
	return &PendingTx{Hash: hash, Method: method, wait: wait}
}

// Wait blocks until the transaction is mined. A reverted transaction
// returns a *RevertError.
func (p *PendingTx) Wait(ctx context.Context) (*types.Receipt, error) {
	if p.wait == nil {
		return nil, errors.New("transaction has no receipt source")
	}
	return p.wait(ctx)
}
