// Package contracttest simulates a single contract on an in-memory chain.
// It serves eth_call for the read handle and accepts signed transactions
// from the local wallet, so panels can be exercised end to end in tests.
package contracttest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ViewFunc answers a read. It returns the method's outputs in ABI order.
type ViewFunc func(from common.Address, args []any) ([]any, error)

// TxFunc applies a transaction. Returning a Revert error fails it.
type TxFunc func(from common.Address, value *big.Int, args []any) error

// Revert builds the error a contract raises with require(..., reason).
func Revert(reason string) error {
	return &revertError{reason: reason}
}

type revertError struct{ reason string }

func (e *revertError) Error() string { return "execution reverted: " + e.reason }
func (e *revertError) ErrorCode() int { return 3 }

// ErrorData is Error(string) encoded the way a node returns it.
func (e *revertError) ErrorData() any {
	sel := crypto.Keccak256([]byte("Error(string)"))[:4]
	strT, _ := abiString()
	enc, _ := strT.Pack(e.reason)
	return hexutil.Encode(append(sel, enc...))
}

// Chain is one deployed contract plus the minimum of a node around it.
type Chain struct {
	mu       sync.Mutex
	kind     *contract.Kind
	addr     common.Address
	chainID  *big.Int
	views    map[string]ViewFunc
	txs      map[string]TxFunc
	receipts map[common.Hash]*types.Receipt
	reverts  map[common.Hash]error
	held     []*types.Transaction
	hold     bool
	block    int64
	nonces   map[common.Address]uint64

	// Calls counts eth_call per method name.
	Calls map[string]int
	// Sent lists every transaction accepted, mined or held.
	Sent []*types.Transaction
	// CallErr, when set, fails every eth_call.
	CallErr error
}

// NewChain deploys kind at addr on a chain with the given id.
func NewChain(kind *contract.Kind, addr common.Address, chainID int64) *Chain {
	return &Chain{
		kind:     kind,
		addr:     addr,
		chainID:  big.NewInt(chainID),
		views:    make(map[string]ViewFunc),
		txs:      make(map[string]TxFunc),
		receipts: make(map[common.Hash]*types.Receipt),
		reverts:  make(map[common.Hash]error),
		nonces:   make(map[common.Address]uint64),
		Calls:    make(map[string]int),
		block:    1,
	}
}

// View registers a read handler.
func (c *Chain) View(method string, fn ViewFunc) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[method] = fn
	return c
}

// Tx registers a transaction handler.
func (c *Chain) Tx(method string, fn TxFunc) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[method] = fn
	return c
}

// Hold keeps new transactions pending until Mine is called.
func (c *Chain) Hold() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hold = true
}

// Mine applies held transactions and stops holding.
func (c *Chain) Mine() {
	c.mu.Lock()
	held := c.held
	c.held = nil
	c.hold = false
	c.mu.Unlock()
	for _, tx := range held {
		c.apply(tx)
	}
}

// Dialer lets the local wallet broadcast into this chain.
func (c *Chain) Dialer() wallet.DialFunc {
	return func(context.Context, string) (wallet.TxBackend, error) { return c, nil }
}

// Count returns the number of eth_call requests for method.
func (c *Chain) Count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[method]
}

// CallContract implements contract.Backend.
func (c *Chain) CallContract(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	if msg.To == nil || *msg.To != c.addr {
		return nil, nil
	}
	method := c.kind.MethodByData(msg.Data)
	if method == "" {
		return nil, Revert("unknown selector")
	}

	c.mu.Lock()
	c.Calls[method]++
	callErr := c.CallErr
	view := c.views[method]
	c.mu.Unlock()

	if callErr != nil {
		return nil, callErr
	}

	// Replaying a failed transaction reproduces its revert.
	if block != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		for h, err := range c.reverts {
			if r := c.receipts[h]; r != nil && r.BlockNumber.Cmp(block) == 0 {
				return nil, err
			}
		}
		return nil, nil
	}

	if view == nil {
		return nil, fmt.Errorf("contracttest: no view registered for %s", method)
	}
	args, err := c.kind.ABI.Methods[method].Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	out, err := view(msg.From, args)
	if err != nil {
		return nil, err
	}
	return c.kind.ABI.Methods[method].Outputs.Pack(out...)
}

// TransactionReceipt implements contract.Backend.
func (c *Chain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

// PendingNonceAt implements wallet.TxBackend.
func (c *Chain) PendingNonceAt(_ context.Context, a common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[a], nil
}

// SuggestGasTipCap implements wallet.TxBackend.
func (c *Chain) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

// HeaderByNumber implements wallet.TxBackend.
func (c *Chain) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: big.NewInt(1_000_000_000)}, nil
}

// EstimateGas implements wallet.TxBackend.
func (c *Chain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

// SendTransaction implements wallet.TxBackend.
func (c *Chain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if tx.ChainId().Cmp(c.chainID) != 0 {
		return fmt.Errorf("invalid chain id %s, want %s", tx.ChainId(), c.chainID)
	}
	from, err := types.Sender(types.NewLondonSigner(c.chainID), tx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.nonces[from]++
	c.Sent = append(c.Sent, tx)
	if c.hold {
		c.held = append(c.held, tx)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	c.apply(tx)
	return nil
}

func (c *Chain) apply(tx *types.Transaction) {
	from, _ := types.Sender(types.NewLondonSigner(c.chainID), tx)
	method := c.kind.MethodByData(tx.Data())

	var err error
	c.mu.Lock()
	fn := c.txs[method]
	c.mu.Unlock()
	switch {
	case fn == nil:
		err = Revert("function not found")
	default:
		args, uerr := c.kind.ABI.Methods[method].Inputs.Unpack(tx.Data()[4:])
		if uerr != nil {
			err = uerr
		} else {
			err = fn(from, tx.Value(), args)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.block++
	r := &types.Receipt{
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(c.block),
		Status:      types.ReceiptStatusSuccessful,
		GasUsed:     21_000,
	}
	if err != nil {
		r.Status = types.ReceiptStatusFailed
		var re *revertError
		if !errors.As(err, &re) {
			err = Revert(err.Error())
		}
		c.reverts[tx.Hash()] = err
	}
	c.receipts[tx.Hash()] = r
}
