package network_test

import (
	"testing"

	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHasAllNetworks(t *testing.T) {
	r := network.NewRegistry()
	assert.Len(t, r.All(), 4)
	assert.Equal(t, []network.Key{network.Testnet, network.Mainnet, network.OpBNBTestnet, network.OpBNBMainnet}, r.Keys())
}

func TestRegistryGet(t *testing.T) {
	r := network.NewRegistry()

	tests := []struct {
		key     string
		chainID int64
		symbol  string
		enabled bool
	}{
		{"testnet", 97, "tBNB", true},
		{"mainnet", 56, "BNB", false},
		{"opbnbTestnet", 5611, "tBNB", true},
		{"OPBNBMAINNET", 204, "BNB", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d, err := r.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.chainID, d.ChainID)
			assert.Equal(t, tt.symbol, d.Currency.Symbol)
			assert.Equal(t, uint8(18), d.Currency.Decimals)
			assert.Equal(t, tt.enabled, d.Enabled)
		})
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := network.NewRegistry()
	_, err := r.Get("goerli")
	assert.ErrorIs(t, err, network.ErrNetworkNotFound)

	_, err = r.GetByChainID(1)
	assert.ErrorIs(t, err, network.ErrNetworkNotFound)
}

func TestGetByChainID(t *testing.T) {
	r := network.NewRegistry()
	d, err := r.GetByChainID(5611)
	require.NoError(t, err)
	assert.Equal(t, network.OpBNBTestnet, d.Key)
}

// ---------------------------------------------------------------------------
// Features
// ---------------------------------------------------------------------------

func TestMainnetsHaveNoContracts(t *testing.T) {
	r := network.NewRegistry()
	for _, k := range []network.Key{network.Mainnet, network.OpBNBMainnet} {
		d := r.MustGet(k)
		for _, f := range network.Features {
			assert.False(t, d.FeatureEnabled(f), "%s/%s", k, f)
			assert.Nil(t, d.ContractAddress(f))
		}
	}
}

func TestTestnetsHaveEveryFeature(t *testing.T) {
	r := network.NewRegistry()
	for _, k := range []network.Key{network.Testnet, network.OpBNBTestnet} {
		d := r.MustGet(k)
		for _, f := range network.Features {
			assert.True(t, d.FeatureEnabled(f), "%s/%s", k, f)
		}
	}
	// Voting shares one address across both testnets.
	assert.Equal(t,
		r.MustGet(network.Testnet).ContractAddress(network.Voting),
		r.MustGet(network.OpBNBTestnet).ContractAddress(network.Voting))
}

func TestChainIDHex(t *testing.T) {
	r := network.NewRegistry()
	assert.Equal(t, "0x61", r.MustGet(network.Testnet).ChainIDHex())
	assert.Equal(t, "0x15eb", r.MustGet(network.OpBNBTestnet).ChainIDHex())
	assert.Equal(t, "0x38", r.MustGet(network.Mainnet).ChainIDHex())
}

func TestExplorerURLs(t *testing.T) {
	d := network.NewRegistry().MustGet(network.Testnet)
	assert.Equal(t, "https://testnet.bscscan.com/address/0xabc", d.AddressURL("0xabc"))
	assert.Equal(t, "https://testnet.bscscan.com/tx/0xdef", d.TxURL("0xdef"))
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

func TestWithRPCOverride(t *testing.T) {
	r := network.NewRegistry(network.WithRPC(network.Testnet, "http://localhost:8545"))
	assert.Equal(t, "http://localhost:8545", r.MustGet(network.Testnet).RPCURL)

	// Defaults are untouched for a fresh registry.
	assert.NotEqual(t, "http://localhost:8545", network.NewRegistry().MustGet(network.Testnet).RPCURL)
}

func TestWithContractOverride(t *testing.T) {
	r := network.NewRegistry(
		network.WithContract(network.Mainnet, network.Auction, "0x00000000000000000000000000000000000000aa"),
		network.WithContract(network.Testnet, network.Lottery, ""),
	)
	assert.True(t, r.MustGet(network.Mainnet).FeatureEnabled(network.Auction))
	assert.False(t, r.MustGet(network.Testnet).FeatureEnabled(network.Lottery))
}
