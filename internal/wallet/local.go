package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// ConfirmFunc asks the user to approve a wallet action.
type ConfirmFunc func(prompt string) bool

// TxBackend is the slice of ethclient the local wallet needs to submit
// transactions.
type TxBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// DialFunc opens a TxBackend for an RPC URL.
type DialFunc func(ctx context.Context, rpcURL string) (TxBackend, error)

func dialEthclient(ctx context.Context, rpcURL string) (TxBackend, error) {
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LocalProvider behaves like an injected browser wallet but signs with a
// key from the keystore. It only knows the chains it was seeded with or
// that were added through wallet_addEthereumChain.
type LocalProvider struct {
	mu      sync.Mutex
	signer  *Signer
	chains  map[string]AddChainParams
	active  string
	confirm ConfirmFunc
	dial    DialFunc
	log     *zap.Logger
}

// LocalOption configures a LocalProvider.
type LocalOption func(*LocalProvider)

// WithKnownChain seeds a chain the wallet already knows.
func WithKnownChain(d *network.Descriptor) LocalOption {
	return func(p *LocalProvider) {
		p.chains[d.ChainIDHex()] = AddChainParamsFor(d)
	}
}

// WithActiveChain sets the initially selected chain (must be known).
func WithActiveChain(d *network.Descriptor) LocalOption {
	return func(p *LocalProvider) {
		p.chains[d.ChainIDHex()] = AddChainParamsFor(d)
		p.active = d.ChainIDHex()
	}
}

// WithConfirm sets the approval prompt. Without one every action is approved.
func WithConfirm(fn ConfirmFunc) LocalOption {
	return func(p *LocalProvider) { p.confirm = fn }
}

// WithDialer replaces the RPC dialer (tests).
func WithDialer(fn DialFunc) LocalOption {
	return func(p *LocalProvider) { p.dial = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) LocalOption {
	return func(p *LocalProvider) { p.log = l }
}

// NewLocalProvider creates a wallet for signer.
func NewLocalProvider(signer *Signer, opts ...LocalOption) *LocalProvider {
	p := &LocalProvider{
		signer: signer,
		chains: make(map[string]AddChainParams),
		dial:   dialEthclient,
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Request implements Provider.
func (p *LocalProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	p.log.Debug("wallet request", zap.String("method", method))
	switch method {
	case MethodChainID:
		p.mu.Lock()
		active := p.active
		p.mu.Unlock()
		if active == "" {
			return nil, &RequestError{Code: 4900, Message: "Wallet is not connected to any chain"}
		}
		return json.Marshal(active)

	case MethodAccounts, MethodRequestAccounts:
		if p.signer == nil {
			return json.Marshal([]common.Address{})
		}
		return json.Marshal([]common.Address{p.signer.Address()})

	case MethodSwitchChain:
		req, err := decodeParam[SwitchChainParams](params, 0)
		if err != nil {
			return nil, err
		}
		return p.switchChain(req)

	case MethodAddChain:
		req, err := decodeParam[AddChainParams](params, 0)
		if err != nil {
			return nil, err
		}
		return p.addChain(req)

	case MethodSendTransaction:
		req, err := decodeParam[TxRequest](params, 0)
		if err != nil {
			return nil, err
		}
		return p.sendTransaction(ctx, req)
	}
	return nil, &RequestError{Code: 4200, Message: fmt.Sprintf("The wallet does not support %s", method)}
}

func (p *LocalProvider) switchChain(req SwitchChainParams) (json.RawMessage, error) {
	p.mu.Lock()
	chain, known := p.chains[req.ChainID]
	active := p.active
	p.mu.Unlock()

	if !known {
		return nil, &RequestError{
			Code:    4902,
			Message: fmt.Sprintf("Unrecognized chain ID %q. Try adding the chain using wallet_addEthereumChain first.", req.ChainID),
		}
	}
	if active == req.ChainID {
		return json.RawMessage("null"), nil
	}
	if !p.approve(fmt.Sprintf("Switch wallet to %s (%s)?", chain.ChainName, req.ChainID)) {
		return nil, errUserRejected("User rejected the request.")
	}

	p.mu.Lock()
	p.active = req.ChainID
	p.mu.Unlock()
	return json.RawMessage("null"), nil
}

func (p *LocalProvider) addChain(req AddChainParams) (json.RawMessage, error) {
	if req.ChainID == "" || len(req.RPCURLs) == 0 {
		return nil, &RequestError{Code: -32602, Message: "chainId and rpcUrls are required"}
	}
	if !p.approve(fmt.Sprintf("Allow this site to add %s (%s, %s)?", req.ChainName, req.ChainID, req.RPCURLs[0])) {
		return nil, errUserRejected("User rejected the request.")
	}
	p.mu.Lock()
	p.chains[req.ChainID] = req
	p.mu.Unlock()
	return json.RawMessage("null"), nil
}

func (p *LocalProvider) sendTransaction(ctx context.Context, req TxRequest) (json.RawMessage, error) {
	if p.signer == nil {
		return nil, &RequestError{Code: 4100, Message: "No account available"}
	}
	if req.From != p.signer.Address() {
		return nil, &RequestError{Code: 4100, Message: fmt.Sprintf("Account %s is not authorized", req.From.Hex())}
	}

	p.mu.Lock()
	chain, ok := p.chains[p.active]
	p.mu.Unlock()
	if !ok {
		return nil, &RequestError{Code: 4900, Message: "Wallet is not connected to any chain"}
	}
	chainID, err := hexutil.DecodeBig(chain.ChainID)
	if err != nil {
		return nil, fmt.Errorf("decoding active chain id: %w", err)
	}

	client, err := p.dial(ctx, chain.RPCURLs[0])
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", chain.ChainName, err)
	}
	if c, ok := client.(interface{ Close() }); ok {
		defer c.Close()
	}

	value := new(big.Int)
	if req.Value != nil {
		value = req.Value.ToInt()
	}
	from := p.signer.Address()

	// A reverting call fails here with the node's "execution reverted" error.
	gas := uint64(0)
	if req.Gas != nil {
		gas = uint64(*req.Gas)
	} else {
		gas, err = client.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &req.To, Value: value, Data: req.Data})
		if err != nil {
			return nil, err
		}
		gas += gas / 5
	}

	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}
	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas tip: %w", err)
	}
	head, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("getting latest header: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(baseFee(head), big.NewInt(2)))

	to := req.To
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      req.Data,
	})

	if !p.approve(fmt.Sprintf("Sign transaction to %s on %s (value %s wei, gas %d)?", to.Hex(), chain.ChainName, value, gas)) {
		return nil, errUserRejected("User denied transaction signature.")
	}

	signed, err := p.signer.SignTx(tx, chainID)
	if err != nil {
		return nil, err
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}
	p.log.Info("transaction broadcast",
		zap.String("hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.String("chain", chain.ChainID))
	return json.Marshal(signed.Hash())
}

func (p *LocalProvider) approve(prompt string) bool {
	if p.confirm == nil {
		return true
	}
	return p.confirm(prompt)
}

func baseFee(h *types.Header) *big.Int {
	if h == nil || h.BaseFee == nil {
		return new(big.Int)
	}
	return h.BaseFee
}
