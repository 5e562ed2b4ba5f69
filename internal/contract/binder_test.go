package contract_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract/contracttest"
	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet/wallettest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var oneCent = big.NewInt(10_000_000_000_000_000)

// rpcMock serves eth_call results keyed by 4-byte selector and fixed
// results for every other method.
func rpcMock(t *testing.T, calls map[string]string, others map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}

		if req.Method == "eth_call" {
			var msg struct {
				Data  string `json:"data"`
				Input string `json:"input"`
			}
			require.NoError(t, json.Unmarshal(req.Params[0], &msg))
			data := msg.Input
			if data == "" {
				data = msg.Data
			}
			if res, ok := calls[data[:10]]; ok {
				resp["result"] = res
			} else {
				resp["error"] = map[string]any{"code": 3, "message": "execution reverted: Not found", "data": revertData("Not found")}
			}
		} else if res, ok := others[req.Method]; ok {
			resp["result"] = res
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func revertData(reason string) string {
	strT := mustArgs("string")
	enc, _ := strT.Pack(reason)
	return "0x08c379a0" + hexutil.Encode(enc)[2:]
}

func testnet() *network.Descriptor {
	return network.NewRegistry().MustGet(network.Testnet)
}

// ---------------------------------------------------------------------------
// Reader
// ---------------------------------------------------------------------------

func TestReaderOverHTTP(t *testing.T) {
	k := contract.MustKind(contract.AuctionID)
	status := k.ABI.Methods["getStatus"]
	enc, err := status.Outputs.Pack("Rare NFT", common.HexToAddress("0x01"), oneCent, big.NewInt(120), false)
	require.NoError(t, err)

	srv := rpcMock(t, map[string]string{
		hexutil.Encode(status.ID): hexutil.Encode(enc),
	}, nil)

	client, err := ethclient.Dial(srv.URL)
	require.NoError(t, err)
	defer client.Close()

	r, err := contract.NewBinder(testnet(), k, client).Read()
	require.NoError(t, err)

	vals, err := r.Call(context.Background(), "getStatus")
	require.NoError(t, err)
	require.Len(t, vals, 5)

	item, err := contract.Out[string](vals, 0)
	require.NoError(t, err)
	assert.Equal(t, "Rare NFT", item)
	bid, err := contract.Out[*big.Int](vals, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, oneCent.Cmp(bid))
}

func TestReaderRevertOverHTTP(t *testing.T) {
	srv := rpcMock(t, nil, nil)
	client, err := ethclient.Dial(srv.URL)
	require.NoError(t, err)
	defer client.Close()

	r, err := contract.NewBinder(testnet(), contract.MustKind(contract.VotingID), client).Read()
	require.NoError(t, err)

	_, err = r.Call(context.Background(), "candidates", big.NewInt(99))
	require.Error(t, err)
	var re *contract.RevertError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Not found", re.Reason)
	assert.Equal(t, apperr.Reverted, apperr.KindOf(err))
}

func TestReaderNoAddress(t *testing.T) {
	d := network.NewRegistry().MustGet(network.Mainnet)
	_, err := contract.NewBinder(d, contract.MustKind(contract.AuctionID), nil).Read()
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
	assert.Equal(t, "No contract address specified", apperr.Message(err))
}

func TestReaderAddressOverride(t *testing.T) {
	d := network.NewRegistry().MustGet(network.Mainnet)
	b := contract.NewBinder(d, contract.MustKind(contract.AuctionID), nil, contract.WithAddress("0x00000000000000000000000000000000000000aa"))
	_, err := b.Read()
	assert.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xaa"), *b.Address())
}

func TestReaderEmptyCode(t *testing.T) {
	k := contract.MustKind(contract.AuctionID)
	chain := contracttest.NewChain(k, common.HexToAddress("0xdead"), 97)
	r, err := contract.NewBinder(testnet(), k, chain).Read()
	require.NoError(t, err)

	_, err = r.Call(context.Background(), "owner")
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
	assert.True(t, strings.HasPrefix(apperr.Message(err), "No auction contract deployed"))
}

func TestReaderTransportError(t *testing.T) {
	k := contract.MustKind(contract.AuctionID)
	chain := contracttest.NewChain(k, *testnet().ContractAddress(network.Auction), 97)
	chain.CallErr = context.DeadlineExceeded

	r, err := contract.NewBinder(testnet(), k, chain).Read()
	require.NoError(t, err)
	_, err = r.Call(context.Background(), "owner")
	assert.Equal(t, apperr.ProviderError, apperr.KindOf(err))
}

// ---------------------------------------------------------------------------
// Writer
// ---------------------------------------------------------------------------

type writeFixture struct {
	chain  *contracttest.Chain
	rec    *wallettest.Recorder
	binder *contract.Binder
}

func newWriteFixture(t *testing.T, active network.Key) *writeFixture {
	t.Helper()
	reg := network.NewRegistry()
	d := reg.MustGet(network.Testnet)
	k := contract.MustKind(contract.AuctionID)
	chain := contracttest.NewChain(k, *d.ContractAddress(network.Auction), 97)

	p := wallet.NewLocalProvider(wallettest.NewSigningWallet(),
		wallet.WithActiveChain(reg.MustGet(active)),
		wallet.WithDialer(chain.Dialer()))
	rec := wallettest.NewRecorder(p)

	b := contract.NewBinder(d, k, chain,
		contract.WithProvider(rec),
		contract.WithReceiptPolling(5*time.Millisecond, 2*time.Second))
	return &writeFixture{chain: chain, rec: rec, binder: b}
}

func TestWriterSendsAndWaits(t *testing.T) {
	f := newWriteFixture(t, network.Testnet)
	var gotValue *big.Int
	f.chain.Tx("placeBid", func(_ common.Address, value *big.Int, _ []any) error {
		gotValue = value
		return nil
	})

	w, err := f.binder.Write(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(wallettest.Address), w.From())

	tx, err := w.Transact(context.Background(), "placeBid", oneCent)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, tx.Hash)

	receipt, err := tx.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Status)
	assert.Equal(t, 0, oneCent.Cmp(gotValue))
}

func TestWriterSwitchesChainFirst(t *testing.T) {
	f := newWriteFixture(t, network.OpBNBTestnet)
	f.chain.Tx("withdraw", func(common.Address, *big.Int, []any) error { return nil })

	w, err := f.binder.Write(context.Background())
	require.NoError(t, err)
	_, err = w.Transact(context.Background(), "withdraw", nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{97}, f.rec.ChainAtSend)
	assert.Equal(t, 1, f.rec.Count(wallet.MethodAddChain))
}

func TestWriterRevertReasonFromReceipt(t *testing.T) {
	f := newWriteFixture(t, network.Testnet)
	f.chain.Tx("endEarly", func(common.Address, *big.Int, []any) error {
		return contracttest.Revert("Auction already closed")
	})

	w, err := f.binder.Write(context.Background())
	require.NoError(t, err)
	tx, err := w.Transact(context.Background(), "endEarly", nil)
	require.NoError(t, err)

	_, err = tx.Wait(context.Background())
	var re *contract.RevertError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, tx.Hash, re.Hash)
	assert.Equal(t, "Auction already closed", re.Reason)
	assert.Equal(t, "Auction has been closed by owner.", apperr.Message(err))
}

func TestWriterWaitTimesOut(t *testing.T) {
	f := newWriteFixture(t, network.Testnet)
	f.chain.Tx("withdraw", func(common.Address, *big.Int, []any) error { return nil })
	f.chain.Hold()

	b := contract.NewBinder(testnet(), contract.MustKind(contract.AuctionID), f.chain,
		contract.WithProvider(f.rec),
		contract.WithReceiptPolling(5*time.Millisecond, 30*time.Millisecond))
	w, err := b.Write(context.Background())
	require.NoError(t, err)
	tx, err := w.Transact(context.Background(), "withdraw", nil)
	require.NoError(t, err)

	_, err = tx.Wait(context.Background())
	assert.Equal(t, apperr.ProviderError, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "not mined within")
}

func TestWriteNeedsWallet(t *testing.T) {
	b := contract.NewBinder(testnet(), contract.MustKind(contract.AuctionID), nil)
	_, err := b.Write(context.Background())
	assert.Equal(t, apperr.WalletAbsent, apperr.KindOf(err))
}

func TestWriteNeedsAccount(t *testing.T) {
	p := wallet.NewLocalProvider(nil, wallet.WithActiveChain(testnet()))
	b := contract.NewBinder(testnet(), contract.MustKind(contract.AuctionID), nil, contract.WithProvider(p))
	_, err := b.Write(context.Background())
	assert.Equal(t, apperr.NotConnected, apperr.KindOf(err))
	assert.Equal(t, "Please connect your wallet first", apperr.Message(err))
}

func TestWriteNeedsAddressBeforeWallet(t *testing.T) {
	d := network.NewRegistry().MustGet(network.Mainnet)
	b := contract.NewBinder(d, contract.MustKind(contract.AuctionID), nil)
	_, err := b.Write(context.Background())
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
}

func TestWriteUserRejectsSwitch(t *testing.T) {
	reg := network.NewRegistry()
	p := wallet.NewLocalProvider(wallettest.NewSigningWallet(),
		wallet.WithActiveChain(reg.MustGet(network.OpBNBTestnet)),
		wallet.WithKnownChain(reg.MustGet(network.Testnet)),
		wallet.WithConfirm(func(string) bool { return false }))
	rec := wallettest.NewRecorder(p)

	b := contract.NewBinder(testnet(), contract.MustKind(contract.AuctionID), nil, contract.WithProvider(rec))
	_, err := b.Write(context.Background())
	assert.Equal(t, apperr.ChainSwitchRejected, apperr.KindOf(err))
	assert.Zero(t, rec.Count(wallet.MethodAddChain))
	assert.Zero(t, rec.Count(wallet.MethodSendTransaction))
}
