package cmd

import (
	"testing"

	"github.com/Mohsinsiddi/bnbpanel/internal/config"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// parseSelector
// ---------------------------------------------------------------------------

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    []byte
		wantErr bool
	}{
		{"0x3ccfd60b", []byte{0x3c, 0xcf, 0xd6, 0x0b}, false},
		{"3ccfd60b", []byte{0x3c, 0xcf, 0xd6, 0x0b}, false},
		{" 0X3CCFD60B ", []byte{0x3c, 0xcf, 0xd6, 0x0b}, false},
		{"0x3ccfd6", nil, true},
		{"0x3ccfd60b00", nil, true},
		{"0xzzzzzzzz", nil, true},
		{"", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSelector(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectorLookupRoundTrip(t *testing.T) {
	kind := contract.MustKind(contract.AuctionID)
	for _, m := range kind.Methods() {
		sel, err := parseSelector(m.Selector)
		require.NoError(t, err)
		assert.Equal(t, m.Name, kind.MethodByData(sel))
	}
}

func TestMethodKind(t *testing.T) {
	assert.Equal(t, "view", methodKind(contract.MethodInfo{ReadOnly: true}))
	assert.Equal(t, "payable", methodKind(contract.MethodInfo{Payable: true}))
	assert.Equal(t, "write", methodKind(contract.MethodInfo{}))
}

// ---------------------------------------------------------------------------
// panelNetwork
// ---------------------------------------------------------------------------

func TestPanelNetwork(t *testing.T) {
	dir := t.TempDir()
	c, err := config.Load(dir)
	require.NoError(t, err)
	c.DefaultNetwork = string(network.OpBNBTestnet)

	prevCfg, prevFlag := cfg, networkFlag
	t.Cleanup(func() { cfg, networkFlag = prevCfg, prevFlag })
	cfg = c

	tests := []struct {
		name       string
		kind       string
		flag       string
		want       network.Key
		switchable bool
	}{
		{"auction is pinned", contract.AuctionID, "mainnet", network.Testnet, false},
		{"lottery is pinned", contract.LotteryID, "", network.Testnet, false},
		{"voting is pinned", contract.VotingID, "opbnbMainnet", network.Testnet, false},
		{"crowdfund follows config", contract.CrowdfundID, "", network.OpBNBTestnet, true},
		{"crowdfund follows flag", contract.CrowdfundID, "mainnet", network.Mainnet, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			networkFlag = tt.flag
			got, sw := panelNetwork(tt.kind)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.switchable, sw)
		})
	}
}

// ---------------------------------------------------------------------------
// labels
// ---------------------------------------------------------------------------

func TestFeatureList(t *testing.T) {
	reg := network.NewRegistry()
	assert.Equal(t, "—", featureList(&network.Descriptor{}))
	for _, d := range reg.All() {
		d := d
		got := featureList(&d)
		for _, f := range network.Features {
			if d.FeatureEnabled(f) {
				assert.Contains(t, got, string(f), d.Key)
			}
		}
	}
}

func TestWalletTypeLabel(t *testing.T) {
	assert.Equal(t, "signing", walletTypeLabel(wallet.TypeSigning))
	assert.Equal(t, "watch-only", walletTypeLabel(wallet.TypeWatchOnly))
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"auction", "bid"},
		{"auction", "pending"},
		{"lottery", "create-round"},
		{"lottery", "tickets"},
		{"voting", "has-voted"},
		{"crowdfund", "refund"},
		{"crowdfund", "contribution"},
		{"network", "show"},
		{"wallet", "use"},
		{"abi"},
		{"init"},
	} {
		c, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], c.Name())
	}
}
