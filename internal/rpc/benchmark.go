package rpc

import (
	"context"

	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"golang.org/x/sync/errgroup"
)

// CheckAll probes every descriptor in parallel. Results keep the input
// order; a failed probe carries its error instead of aborting the rest.
func CheckAll(ctx context.Context, ds []network.Descriptor) []Probe {
	out := make([]Probe, len(ds))
	var g errgroup.Group
	for i := range ds {
		i := i
		g.Go(func() error {
			out[i] = Check(ctx, &ds[i])
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Healthy filters probes down to the ones that passed.
func Healthy(probes []Probe) []Probe {
	var out []Probe
	for _, p := range probes {
		if p.Healthy {
			out = append(out, p)
		}
	}
	return out
}
