package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// RemoteProvider forwards requests to an external wallet that speaks
// EIP-1193 over JSON-RPC (Frame, a signer proxy, ...).
type RemoteProvider struct {
	client *rpc.Client
}

// DialRemote connects to a wallet endpoint.
func DialRemote(ctx context.Context, url string) (*RemoteProvider, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to wallet at %s: %w", url, err)
	}
	return &RemoteProvider{client: c}, nil
}

// Request implements Provider.
func (p *RemoteProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := p.client.CallContext(ctx, &out, method, params...); err != nil {
		var re rpc.Error
		if errors.As(err, &re) {
			rerr := &RequestError{Code: re.ErrorCode(), Message: re.Error()}
			var de rpc.DataError
			if errors.As(err, &de) {
				rerr.Data = de.ErrorData()
			}
			return nil, rerr
		}
		return nil, err
	}
	return out, nil
}

// Close releases the connection.
func (p *RemoteProvider) Close() {
	p.client.Close()
}
