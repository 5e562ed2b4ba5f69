// Package rpc checks that the network registry's RPC endpoints answer and
// serve the chain they claim to.
package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/ethereum/go-ethereum/ethclient"
)

// CheckTimeout bounds one endpoint check.
const CheckTimeout = 5 * time.Second

// Probe is the outcome of one endpoint check.
type Probe struct {
	Key         network.Key
	URL         string
	Latency     time.Duration
	ChainID     int64
	BlockNumber uint64
	Healthy     bool
	Err         error
}

// Check dials d's RPC and reads its chain id and head block. An endpoint
// that reports a different chain id than d is unhealthy.
func Check(ctx context.Context, d *network.Descriptor) Probe {
	p := Probe{Key: d.Key, URL: d.RPCURL}

	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	start := time.Now()
	c, err := ethclient.DialContext(ctx, d.RPCURL)
	if err != nil {
		p.Err = err
		return p
	}
	defer c.Close()

	id, err := c.ChainID(ctx)
	if err != nil {
		p.Err = err
		return p
	}
	p.Latency = time.Since(start)
	if !id.IsInt64() {
		p.Err = fmt.Errorf("endpoint chain id %s out of range", id)
		return p
	}
	p.ChainID = id.Int64()

	if p.BlockNumber, err = c.BlockNumber(ctx); err != nil {
		p.Err = err
		return p
	}
	if p.ChainID != d.ChainID {
		p.Err = fmt.Errorf("endpoint serves chain %d, want %d", p.ChainID, d.ChainID)
		return p
	}
	p.Healthy = true
	return p
}
