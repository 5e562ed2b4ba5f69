package panel_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel/paneltest"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withdraw(context.Context) (txflow.Action, error) {
	return txflow.Call("withdraw", "Withdrawn pending returns", nil), nil
}

func readCampaignCount(ctx context.Context, r contract.Caller) (*big.Int, error) {
	out, err := r.Call(ctx, "campaignCount")
	if err != nil {
		return nil, err
	}
	return contract.Out[*big.Int](out, 0)
}

func readOwner(ctx context.Context, r contract.Caller) (common.Address, error) {
	out, err := r.Call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return contract.Out[common.Address](out, 0)
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

func TestSubmitAlignsChainBeforeSending(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID, paneltest.WalletOn(network.OpBNBTestnet))
	h.Chain.Tx("withdraw", func(common.Address, *big.Int, []any) error { return nil })

	_, err := h.Session.Submit(context.Background(), withdraw, nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{97}, h.Wallet.ChainAtSend)
	methods := h.Wallet.Methods()
	assert.Less(t, indexOf(methods, wallet.MethodSwitchChain), indexOf(methods, wallet.MethodSendTransaction))
	assert.Equal(t, txflow.Success, h.Session.Machine().Status().Phase)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.Metrics.TxOutcomes.WithLabelValues("auction", "withdraw", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.Metrics.ChainSwitches.WithLabelValues(wallet.OutcomeAdded)))
}

func TestEveryMinedWriteSawTheTargetChain(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID, paneltest.WalletOn(network.OpBNBTestnet))
	h.Chain.Tx("withdraw", func(common.Address, *big.Int, []any) error { return nil })

	for i := 0; i < 3; i++ {
		tk, err := h.Session.Submit(context.Background(), withdraw, nil)
		require.NoError(t, err)
		h.Session.Machine().Dismiss(tk)
	}
	require.Len(t, h.Wallet.ChainAtSend, 3)
	for _, id := range h.Wallet.ChainAtSend {
		assert.Equal(t, int64(97), id)
	}
}

func TestSubmitOnDisabledFeatureNeverTouchesWallet(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID, paneltest.OnNetwork(network.Mainnet))
	assert.False(t, h.Session.CanWrite())

	built := false
	_, err := h.Session.Submit(context.Background(), func(context.Context) (txflow.Action, error) {
		built = true
		return txflow.Call("withdraw", "", nil), nil
	}, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
	assert.False(t, built)
	assert.Empty(t, h.Wallet.Calls())
	assert.Equal(t, txflow.Error, h.Session.Machine().Status().Phase)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	bad := apperr.New(apperr.ValidationError, "Please enter a bid amount")

	tk, err := h.Session.Submit(context.Background(), func(context.Context) (txflow.Action, error) {
		return txflow.Action{}, bad
	}, nil)
	assert.ErrorIs(t, err, bad)
	assert.Equal(t, txflow.WindowValidation, tk.After)
	assert.Empty(t, h.Wallet.Calls())
}

func TestInvalidInputAfterSuccessPassesThroughIdle(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	h.Chain.Tx("withdraw", func(common.Address, *big.Int, []any) error { return nil })

	var phases []txflow.Phase
	h.Session.Machine().OnChange(func(st txflow.Status) { phases = append(phases, st.Phase) })

	_, err := h.Session.Submit(context.Background(), withdraw, nil)
	require.NoError(t, err)
	require.Equal(t, txflow.Success, h.Session.Machine().Status().Phase)

	bad := apperr.New(apperr.ValidationError, "Please enter a valid bid amount")
	_, err = h.Session.Submit(context.Background(), func(context.Context) (txflow.Action, error) {
		return txflow.Action{}, bad
	}, nil)
	require.ErrorIs(t, err, bad)

	require.GreaterOrEqual(t, len(phases), 3)
	tail := phases[len(phases)-3:]
	assert.Equal(t, []txflow.Phase{txflow.Success, txflow.Idle, txflow.Error}, tail)
}

func TestSubmitWhileBusy(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	require.NoError(t, h.Session.Machine().Begin())

	_, err := h.Session.Submit(context.Background(), withdraw, nil)
	assert.ErrorIs(t, err, txflow.ErrBusy)
	assert.Empty(t, h.Wallet.Calls())
}

func TestSubmitWithoutWallet(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID, paneltest.NoWallet())
	_, err := h.Session.Submit(context.Background(), withdraw, nil)
	assert.Equal(t, apperr.WalletAbsent, apperr.KindOf(err))
	assert.Equal(t, "No wallet detected. Please install MetaMask or a compatible wallet.",
		h.Session.Machine().Status().Message)
}

func TestAccount(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	acc := h.Session.Account(context.Background())
	require.NotNil(t, acc)
	assert.Equal(t, paneltest.User(), *acc)

	assert.Nil(t, paneltest.New(t, contract.AuctionID, paneltest.Disconnected()).Session.Account(context.Background()))
	assert.Nil(t, paneltest.New(t, contract.AuctionID, paneltest.NoWallet()).Session.Account(context.Background()))
}

// ---------------------------------------------------------------------------
// Networks
// ---------------------------------------------------------------------------

func TestLockedPanelRefusesSwitch(t *testing.T) {
	h := paneltest.New(t, contract.VotingID)
	err := h.Session.SelectNetwork(context.Background(), string(network.OpBNBTestnet))
	assert.ErrorIs(t, err, panel.ErrLocked)
	assert.Equal(t, network.Testnet, h.Session.Network().Key)
}

func TestSwitchRefusesDisabledNetwork(t *testing.T) {
	h := paneltest.New(t, contract.CrowdfundID, paneltest.Switchable())
	err := h.Session.SelectNetwork(context.Background(), string(network.Mainnet))
	assert.ErrorIs(t, err, panel.ErrNetworkDisabled)
	assert.Equal(t, network.Testnet, h.Session.Network().Key)

	err = h.Session.SelectNetwork(context.Background(), "goerli")
	assert.ErrorIs(t, err, network.ErrNetworkNotFound)
}

func TestSwitchRebindsAndFencesOldResults(t *testing.T) {
	h := paneltest.New(t, contract.CrowdfundID, paneltest.Switchable())
	h.Chain.View("campaignCount", func(common.Address, []any) ([]any, error) { return []any{big.NewInt(4)}, nil })

	var slot panel.Slot[*big.Int]
	before := panel.Project(context.Background(), h.Session, readCampaignCount)
	require.NoError(t, before.Err)
	assert.Equal(t, int64(4), before.View.Int64())

	require.NoError(t, h.Session.SelectNetwork(context.Background(), string(network.OpBNBTestnet)))
	assert.Equal(t, network.OpBNBTestnet, h.Session.Network().Key)
	assert.NotEqual(t, before.Token, h.Session.Token())
	assert.True(t, strings.EqualFold(
		"https://testnet.opbnbscan.com/address/0x9C8ca8Cb9eC9886f2cbD9917F083D561e773cF28",
		h.Session.AddressURL()), h.Session.AddressURL())

	assert.False(t, slot.Apply(h.Session, before), "result from the previous network must be dropped")
	_, ok := slot.Get()
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// Slot
// ---------------------------------------------------------------------------

func TestSlotKeepsLastGoodView(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	h.Chain.View("owner", func(common.Address, []any) ([]any, error) { return []any{owner}, nil })

	var slot panel.Slot[common.Address]
	require.NoError(t, panel.Refresh(context.Background(), h.Session, &slot, readOwner))
	got, ok := slot.Get()
	require.True(t, ok)
	assert.Equal(t, owner, got)
	assert.Equal(t, paneltest.Epoch, slot.Updated())

	h.Chain.CallErr = errors.New("connection refused")
	err := panel.Refresh(context.Background(), h.Session, &slot, readOwner)
	require.Error(t, err)
	assert.NotEmpty(t, slot.Err())
	got, ok = slot.Get()
	assert.True(t, ok)
	assert.Equal(t, owner, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.Metrics.ProjectorFailures.WithLabelValues("auction")))

	h.Chain.CallErr = nil
	require.NoError(t, panel.Refresh(context.Background(), h.Session, &slot, readOwner))
	assert.Empty(t, slot.Err())
}

func TestClosedSessionDropsResults(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID)
	h.Chain.View("owner", func(common.Address, []any) ([]any, error) { return []any{common.Address{}}, nil })

	r := panel.Project(context.Background(), h.Session, readOwner)
	h.Session.Close()

	var slot panel.Slot[common.Address]
	assert.False(t, slot.Apply(h.Session, r))
	_, err := h.Session.Reader()
	assert.ErrorIs(t, err, panel.ErrClosed)
}

func TestMissingAddressIsConfigError(t *testing.T) {
	h := paneltest.New(t, contract.AuctionID, paneltest.OnNetwork(network.OpBNBMainnet))
	var slot panel.Slot[common.Address]
	err := panel.Refresh(context.Background(), h.Session, &slot, readOwner)
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
	assert.Equal(t, "No contract address specified", slot.Err())
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
