package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Provider is an EIP-1193 style wallet: a single request entry point that
// either returns the JSON result or a *RequestError.
type Provider interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// RequestError is a wallet-side failure with an EIP-1193 code.
type RequestError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("wallet error %d", e.Code)
	}
	return e.Message
}

// ErrorCode satisfies go-ethereum's rpc.Error.
func (e *RequestError) ErrorCode() int { return e.Code }

// ErrorData satisfies go-ethereum's rpc.DataError.
func (e *RequestError) ErrorData() any { return e.Data }

func errUserRejected(msg string) *RequestError {
	return &RequestError{Code: apperr.CodeUserRejected, Message: msg}
}

// Request method names.
const (
	MethodChainID         = "eth_chainId"
	MethodAccounts        = "eth_accounts"
	MethodRequestAccounts = "eth_requestAccounts"
	MethodSwitchChain     = "wallet_switchEthereumChain"
	MethodAddChain        = "wallet_addEthereumChain"
	MethodSendTransaction = "eth_sendTransaction"
)

// SwitchChainParams is the wallet_switchEthereumChain argument.
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

// AddChainParams is the wallet_addEthereumChain argument.
type AddChainParams struct {
	ChainID           string                 `json:"chainId"`
	ChainName         string                 `json:"chainName"`
	NativeCurrency    network.NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string               `json:"rpcUrls"`
	BlockExplorerURLs []string               `json:"blockExplorerUrls"`
}

// AddChainParamsFor builds the add-chain request for a network.
func AddChainParamsFor(d *network.Descriptor) AddChainParams {
	return AddChainParams{
		ChainID:           d.ChainIDHex(),
		ChainName:         d.Name,
		NativeCurrency:    d.Currency,
		RPCURLs:           []string{d.RPCURL},
		BlockExplorerURLs: []string{d.ExplorerURL},
	}
}

// TxRequest is the eth_sendTransaction argument.
type TxRequest struct {
	From  common.Address  `json:"from"`
	To    common.Address  `json:"to"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
}

// ChainID asks the wallet for its active chain.
func ChainID(ctx context.Context, p Provider) (int64, error) {
	raw, err := p.Request(ctx, MethodChainID)
	if err != nil {
		return 0, err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("decoding chain id: %w", err)
	}
	id, err := hexutil.DecodeUint64(strings.ToLower(s))
	if err != nil {
		return 0, fmt.Errorf("decoding chain id %q: %w", s, err)
	}
	return int64(id), nil
}

// Accounts returns the accounts the wallet exposes, first one active.
func Accounts(ctx context.Context, p Provider) ([]common.Address, error) {
	raw, err := p.Request(ctx, MethodAccounts)
	if err != nil {
		return nil, err
	}
	var accts []common.Address
	if err := json.Unmarshal(raw, &accts); err != nil {
		return nil, fmt.Errorf("decoding accounts: %w", err)
	}
	return accts, nil
}

// SendTransaction submits a transaction and returns its hash.
func SendTransaction(ctx context.Context, p Provider, req TxRequest) (common.Hash, error) {
	raw, err := p.Request(ctx, MethodSendTransaction, req)
	if err != nil {
		return common.Hash{}, err
	}
	var h common.Hash
	if err := json.Unmarshal(raw, &h); err != nil {
		return common.Hash{}, fmt.Errorf("decoding tx hash: %w", err)
	}
	return h, nil
}

// decodeParam re-decodes the i-th request parameter into T.
func decodeParam[T any](params []any, i int) (T, error) {
	var v T
	if i >= len(params) {
		return v, &RequestError{Code: -32602, Message: "missing params"}
	}
	b, err := json.Marshal(params[i])
	if err != nil {
		return v, &RequestError{Code: -32602, Message: err.Error()}
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, &RequestError{Code: -32602, Message: err.Error()}
	}
	return v, nil
}
