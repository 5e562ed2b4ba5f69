package network

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNetworkNotFound is returned when a key is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Key identifies a network in the registry.
type Key string

const (
	Testnet      Key = "testnet"
	Mainnet      Key = "mainnet"
	OpBNBTestnet Key = "opbnbTestnet"
	OpBNBMainnet Key = "opbnbMainnet"
)

// Feature names one of the four contract panels.
type Feature string

const (
	Voting       Feature = "voting"
	Auction      Feature = "auction"
	Lottery      Feature = "lottery"
	CrowdFunding Feature = "crowdFunding"
)

// Features lists every panel in display order.
var Features = []Feature{Auction, Lottery, Voting, CrowdFunding}

// NativeCurrency describes the gas token of a network.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Descriptor holds all metadata for a single network.
type Descriptor struct {
	Key         Key                         `json:"key"`
	ChainID     int64                       `json:"chain_id"`
	Name        string                      `json:"name"`
	Label       string                      `json:"label"`
	Description string                      `json:"description"`
	RPCURL      string                      `json:"rpc_url"`
	ExplorerURL string                      `json:"explorer_url"`
	Currency    NativeCurrency              `json:"native_currency"`
	Enabled     bool                        `json:"enabled"`
	Contracts   map[Feature]*common.Address `json:"contracts"`
}

// ChainIDHex returns the chain id as a 0x-prefixed hex string, the form
// wallet_switchEthereumChain expects.
func (d *Descriptor) ChainIDHex() string {
	return fmt.Sprintf("0x%x", d.ChainID)
}

// BigChainID returns the chain id for signers.
func (d *Descriptor) BigChainID() *big.Int {
	return big.NewInt(d.ChainID)
}

// FeatureEnabled reports whether the feature has a deployed contract here.
func (d *Descriptor) FeatureEnabled(f Feature) bool {
	return d.Contracts[f] != nil
}

// ContractAddress returns the feature's contract address, or nil when the
// feature is not deployed on this network.
func (d *Descriptor) ContractAddress(f Feature) *common.Address {
	return d.Contracts[f]
}

// AddressURL links to an address page on the block explorer.
func (d *Descriptor) AddressURL(addr string) string {
	return strings.TrimRight(d.ExplorerURL, "/") + "/address/" + addr
}

// TxURL links to a transaction page on the block explorer.
func (d *Descriptor) TxURL(hash string) string {
	return strings.TrimRight(d.ExplorerURL, "/") + "/tx/" + hash
}

// Clone returns a deep copy so callers can apply overrides safely.
func (d Descriptor) Clone() *Descriptor {
	c := d
	c.Contracts = make(map[Feature]*common.Address, len(d.Contracts))
	for f, a := range d.Contracts {
		if a != nil {
			addr := *a
			c.Contracts[f] = &addr
		}
	}
	return &c
}

// Registry is the fixed table of supported networks.
type Registry struct {
	networks []Descriptor
	byKey    map[string]*Descriptor
	byID     map[int64]*Descriptor
}

// Option customises a registry at construction time.
type Option func(*Registry)

// WithRPC overrides the RPC endpoint of one network.
func WithRPC(k Key, url string) Option {
	return func(r *Registry) {
		if d, ok := r.byKey[strings.ToLower(string(k))]; ok && url != "" {
			d.RPCURL = url
		}
	}
}

// WithContract overrides (or sets) a feature address on one network.
// An empty address removes the feature from that network.
func WithContract(k Key, f Feature, addr string) Option {
	return func(r *Registry) {
		d, ok := r.byKey[strings.ToLower(string(k))]
		if !ok {
			return
		}
		if addr == "" {
			d.Contracts[f] = nil
			return
		}
		a := common.HexToAddress(addr)
		d.Contracts[f] = &a
	}
}

// NewRegistry builds the registry of the four BNB networks.
func NewRegistry(opts ...Option) *Registry {
	src := allNetworks()
	r := &Registry{
		networks: make([]Descriptor, len(src)),
		byKey:    make(map[string]*Descriptor, len(src)),
		byID:     make(map[int64]*Descriptor, len(src)),
	}
	for i := range src {
		r.networks[i] = *src[i].Clone()
		d := &r.networks[i]
		r.byKey[strings.ToLower(string(d.Key))] = d
		r.byID[d.ChainID] = d
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// All returns every network in registry order.
func (r *Registry) All() []Descriptor {
	return r.networks
}

// Keys returns the registry keys in order.
func (r *Registry) Keys() []Key {
	keys := make([]Key, len(r.networks))
	for i, d := range r.networks {
		keys[i] = d.Key
	}
	return keys
}

// Get finds a network by key, case-insensitively.
func (r *Registry) Get(key string) (*Descriptor, error) {
	d, ok := r.byKey[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNetworkNotFound, key)
	}
	return d, nil
}

// MustGet is Get for keys known at compile time.
func (r *Registry) MustGet(k Key) *Descriptor {
	d, err := r.Get(string(k))
	if err != nil {
		panic(err)
	}
	return d
}

// GetByChainID finds a network by its numeric chain id.
func (r *Registry) GetByChainID(id int64) (*Descriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: chain id %d", ErrNetworkNotFound, id)
	}
	return d, nil
}
