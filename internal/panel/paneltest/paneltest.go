// Package paneltest mounts a panel session against an in-memory contract
// and a local test wallet.
package paneltest

import (
	"context"
	"testing"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract/contracttest"
	"github.com/Mohsinsiddi/bnbpanel/internal/metrics"
	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet/wallettest"
	"github.com/ethereum/go-ethereum/common"
	testingclock "k8s.io/utils/clock/testing"
)

// Epoch is the fake clock's starting time.
var Epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Harness is a mounted session plus the doubles behind it.
type Harness struct {
	Registry *network.Registry
	Chain    *contracttest.Chain
	Wallet   *wallettest.Recorder
	Clock    *testingclock.FakeClock
	Metrics  *metrics.Recorder
	Session  *panel.Session
}

type config struct {
	network    network.Key
	active     network.Key
	switchable bool
	signer     bool
	noWallet   bool
	confirm    wallet.ConfirmFunc
	address    string
}

// Option tweaks the harness.
type Option func(*config)

// OnNetwork mounts the panel on k instead of testnet.
func OnNetwork(k network.Key) Option { return func(c *config) { c.network = k } }

// WalletOn starts the wallet on k instead of the panel's network.
func WalletOn(k network.Key) Option { return func(c *config) { c.active = k } }

// Switchable allows network selection.
func Switchable() Option { return func(c *config) { c.switchable = true } }

// Disconnected gives the wallet no account.
func Disconnected() Option { return func(c *config) { c.signer = false } }

// NoWallet mounts without any provider.
func NoWallet() Option { return func(c *config) { c.noWallet = true } }

// AtAddress overrides the contract address, as --address does.
func AtAddress(hex string) Option { return func(c *config) { c.address = hex } }

// Confirm sets the wallet approval prompt.
func Confirm(fn wallet.ConfirmFunc) Option { return func(c *config) { c.confirm = fn } }

// New mounts kindID. The in-memory contract lives at the registry address
// of the panel's starting network and answers on every network.
func New(t testing.TB, kindID string, opts ...Option) *Harness {
	t.Helper()
	cfg := config{network: network.Testnet, signer: true}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.active == "" {
		cfg.active = cfg.network
	}

	reg := network.NewRegistry()
	kind := contract.MustKind(kindID)
	d := reg.MustGet(cfg.network)
	addr := common.Address{}
	if a := d.ContractAddress(kind.Feature); a != nil {
		addr = *a
	}
	if cfg.address != "" {
		addr = common.HexToAddress(cfg.address)
	}

	h := &Harness{
		Registry: reg,
		Chain:    contracttest.NewChain(kind, addr, reg.MustGet(network.Testnet).ChainID),
		Clock:    testingclock.NewFakeClock(Epoch),
		Metrics:  metrics.New(),
	}

	env := panel.Env{
		Registry:       reg,
		Clock:          h.Clock,
		Metrics:        h.Metrics,
		Address:        cfg.address,
		ReceiptPoll:    5 * time.Millisecond,
		ConfirmTimeout: 2 * time.Second,
		Dial: func(context.Context, *network.Descriptor) (contract.Backend, error) {
			return h.Chain, nil
		},
	}
	if !cfg.noWallet {
		var signer *wallet.Signer
		if cfg.signer {
			signer = wallettest.NewSigningWallet()
		}
		lopts := []wallet.LocalOption{
			wallet.WithActiveChain(reg.MustGet(cfg.active)),
			wallet.WithDialer(h.Chain.Dialer()),
		}
		if cfg.confirm != nil {
			lopts = append(lopts, wallet.WithConfirm(cfg.confirm))
		}
		h.Wallet = wallettest.NewRecorder(wallet.NewLocalProvider(signer, lopts...))
		env.Provider = h.Wallet
	}

	s, err := panel.Open(context.Background(), env, kindID, cfg.network, cfg.switchable)
	if err != nil {
		t.Fatalf("mounting %s panel: %v", kindID, err)
	}
	t.Cleanup(s.Close)
	h.Session = s
	return h
}

// User is the test wallet's address.
func User() common.Address { return common.HexToAddress(wallettest.Address) }
