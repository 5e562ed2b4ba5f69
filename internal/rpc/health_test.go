package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evmRPCServer answers eth_chainId and eth_blockNumber.
func evmRPCServer(t *testing.T, chainID int64, blockNum uint64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var result string
		switch req.Method {
		case "eth_chainId":
			result = fmt.Sprintf("0x%x", chainID)
		case "eth_blockNumber":
			result = fmt.Sprintf("0x%x", blockNum)
		default:
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32601,"message":"method not found"}}`, req.ID)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":"%s"}`, req.ID, result)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func descriptor(url string, chainID int64) *network.Descriptor {
	return &network.Descriptor{Key: network.Testnet, RPCURL: url, ChainID: chainID}
}

// ---------------------------------------------------------------------------
// Check
// ---------------------------------------------------------------------------

func TestCheckHealthy(t *testing.T) {
	srv := evmRPCServer(t, 97, 1000)

	p := Check(context.Background(), descriptor(srv.URL, 97))
	require.NoError(t, p.Err)
	assert.True(t, p.Healthy)
	assert.Equal(t, network.Testnet, p.Key)
	assert.Equal(t, int64(97), p.ChainID)
	assert.Equal(t, uint64(1000), p.BlockNumber)
	assert.Positive(t, p.Latency, "latency should be measured")
}

func TestCheckWrongChain(t *testing.T) {
	srv := evmRPCServer(t, 56, 1000)

	p := Check(context.Background(), descriptor(srv.URL, 97))
	assert.False(t, p.Healthy)
	require.Error(t, p.Err)
	assert.Contains(t, p.Err.Error(), "serves chain 56, want 97")
}

func TestCheckUnreachable(t *testing.T) {
	p := Check(context.Background(), descriptor("http://127.0.0.1:19994", 97))
	assert.Error(t, p.Err)
	assert.False(t, p.Healthy)
}

func TestCheckCancelledContext(t *testing.T) {
	srv := evmRPCServer(t, 97, 1000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Check(ctx, descriptor(srv.URL, 97))
	assert.False(t, p.Healthy)
}

// ---------------------------------------------------------------------------
// CheckAll
// ---------------------------------------------------------------------------

func TestCheckAllKeepsOrder(t *testing.T) {
	good := evmRPCServer(t, 97, 10)
	other := evmRPCServer(t, 5611, 20)

	ds := []network.Descriptor{
		{Key: network.Testnet, RPCURL: good.URL, ChainID: 97},
		{Key: network.Mainnet, RPCURL: "http://127.0.0.1:19995", ChainID: 56},
		{Key: network.OpBNBTestnet, RPCURL: other.URL, ChainID: 5611},
	}
	probes := CheckAll(context.Background(), ds)
	require.Len(t, probes, 3)
	assert.Equal(t, network.Testnet, probes[0].Key)
	assert.True(t, probes[0].Healthy)
	assert.False(t, probes[1].Healthy)
	assert.Equal(t, uint64(20), probes[2].BlockNumber)

	healthy := Healthy(probes)
	require.Len(t, healthy, 2)
	assert.Equal(t, network.OpBNBTestnet, healthy[1].Key)
}
