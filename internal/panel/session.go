// Package panel holds the per-panel session shared by the terminal panels
// and the one-shot commands: the selected network, the contract binding,
// the transaction lifecycle and the mount token that fences off results
// arriving after the panel moved on.
package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/metrics"
	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

var (
	ErrLocked          = errors.New("this panel is locked to its network")
	ErrNetworkDisabled = errors.New("network is not available")
	ErrClosed          = errors.New("panel closed")
	ErrStale           = errors.New("result belongs to a previous mount")
)

// DialFunc opens the read backend for a network.
type DialFunc func(ctx context.Context, d *network.Descriptor) (contract.Backend, error)

// Env is what every session needs from the outside world.
type Env struct {
	Registry *network.Registry
	Provider wallet.Provider
	Dial     DialFunc
	Clock    clock.PassiveClock
	Log      *zap.Logger
	Metrics  *metrics.Recorder

	// Address overrides the registry's contract address.
	Address string
	// ReceiptPoll and ConfirmTimeout tune receipt waiting; zero keeps the
	// binder defaults.
	ReceiptPoll    time.Duration
	ConfirmTimeout time.Duration
}

// Session is one mounted panel.
type Session struct {
	env        Env
	kind       *contract.Kind
	switchable bool
	machine    *txflow.Machine
	runner     *txflow.Runner
	coord      *wallet.Coordinator
	log        *zap.Logger

	mu      sync.Mutex
	token   uuid.UUID
	net     *network.Descriptor
	backend contract.Backend
	binder  *contract.Binder
	closed  bool
}

// Open mounts a panel for kindID on network key. Only switchable panels
// accept SelectNetwork later.
func Open(ctx context.Context, env Env, kindID string, key network.Key, switchable bool) (*Session, error) {
	kind, ok := contract.GetKind(kindID)
	if !ok {
		return nil, fmt.Errorf("unknown contract kind %q", kindID)
	}
	if env.Registry == nil {
		env.Registry = network.NewRegistry()
	}
	if env.Dial == nil {
		env.Dial = dialEthclient
	}
	if env.Clock == nil {
		env.Clock = clock.RealClock{}
	}
	if env.Log == nil {
		env.Log = zap.NewNop()
	}

	s := &Session{
		env:        env,
		kind:       kind,
		switchable: switchable,
		machine:    txflow.NewMachine(),
		log:        env.Log.With(zap.String("feature", string(kind.Feature))),
	}
	s.coord = &wallet.Coordinator{Log: s.log, OnOutcome: env.Metrics.ChainSwitch}
	s.runner = &txflow.Runner{
		Machine: s.machine,
		Log:     s.log,
		Observe: func(method, outcome string) { env.Metrics.Tx(string(kind.Feature), method, outcome) },
	}

	d, err := env.Registry.Get(string(key))
	if err != nil {
		return nil, err
	}
	if err := s.bind(ctx, d); err != nil {
		return nil, err
	}
	return s, nil
}

func dialEthclient(ctx context.Context, d *network.Descriptor) (contract.Backend, error) {
	c, err := contract.Dial(ctx, d)
	if err != nil {
		return nil, err
	}
	return c, nil
}

type closer interface{ Close() }

// bind points the session at d under a fresh mount token.
func (s *Session) bind(ctx context.Context, d *network.Descriptor) error {
	backend, err := s.env.Dial(ctx, d)
	if err != nil {
		return apperr.Wrap(apperr.ProviderError, "connecting to "+d.Name, err)
	}

	opts := []contract.BinderOption{
		contract.WithCoordinator(s.coord),
		contract.WithLogger(s.log),
	}
	if s.env.Provider != nil {
		opts = append(opts, contract.WithProvider(s.env.Provider))
	}
	if s.env.Address != "" {
		opts = append(opts, contract.WithAddress(s.env.Address))
	}
	if s.env.ReceiptPoll > 0 || s.env.ConfirmTimeout > 0 {
		opts = append(opts, contract.WithReceiptPolling(s.env.ReceiptPoll, s.env.ConfirmTimeout))
	}
	binder := contract.NewBinder(d, s.kind, backend, opts...)

	s.mu.Lock()
	old := s.backend
	s.net = d
	s.backend = backend
	s.binder = binder
	s.token = uuid.New()
	s.mu.Unlock()

	if c, ok := old.(closer); ok && old != backend {
		c.Close()
	}
	s.log.Info("panel bound",
		zap.String("network", string(d.Key)),
		zap.Stringer("token", s.token))
	return nil
}

// Token identifies the current mount. It changes on every network switch
// and on Close.
func (s *Session) Token() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Current reports whether tok is still the live mount.
func (s *Session) Current(tok uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && tok == s.token
}

// Kind is the bound contract kind.
func (s *Session) Kind() *contract.Kind { return s.kind }

// Network is the selected network.
func (s *Session) Network() *network.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net
}

// Switchable reports whether the user may change networks.
func (s *Session) Switchable() bool { return s.switchable }

// Networks lists every registry entry for the picker, disabled ones
// included so they can be shown greyed out.
func (s *Session) Networks() []network.Descriptor { return s.env.Registry.All() }

// SelectNetwork rebinds to key. Disabled networks are refused and locked
// panels never move.
func (s *Session) SelectNetwork(ctx context.Context, key string) error {
	if !s.switchable {
		return ErrLocked
	}
	d, err := s.env.Registry.Get(key)
	if err != nil {
		return err
	}
	if !d.Enabled {
		return fmt.Errorf("%w: %s", ErrNetworkDisabled, d.Name)
	}
	if cur := s.Network(); cur != nil && cur.Key == d.Key {
		return nil
	}
	s.machine.Reset()
	return s.bind(ctx, d)
}

// Address is the bound contract address, nil when none is configured.
func (s *Session) Address() *common.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binder.Address()
}

// Reader returns the read handle for the current network.
func (s *Session) Reader() (contract.Caller, error) {
	s.mu.Lock()
	b := s.binder
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	return b.Read()
}

// CanWrite reports whether write actions may be offered: the feature has
// an address on an enabled network.
func (s *Session) CanWrite() bool {
	d := s.Network()
	if d == nil || !d.Enabled {
		return false
	}
	if s.env.Address != "" {
		return true
	}
	return d.FeatureEnabled(s.kind.Feature)
}

// Machine is the session's transaction lifecycle.
func (s *Session) Machine() *txflow.Machine { return s.machine }

// Now reads the session clock.
func (s *Session) Now() time.Time { return s.env.Clock.Now() }

// Account returns the wallet's active account, or nil when there is no
// wallet or it is not connected.
func (s *Session) Account(ctx context.Context) *common.Address {
	if s.env.Provider == nil {
		return nil
	}
	accounts, err := wallet.Accounts(ctx, s.env.Provider)
	if err != nil || len(accounts) == 0 {
		return nil
	}
	a := accounts[0]
	return &a
}

// Builder prepares an action. Returning an error rejects the input
// without touching the wallet.
type Builder func(ctx context.Context) (txflow.Action, error)

// Submit validates and runs one write. A rejected input or a disabled
// feature lands in the error state without any wallet request, and a
// submission while another is pending returns txflow.ErrBusy.
func (s *Session) Submit(ctx context.Context, build Builder, refresh func(context.Context)) (txflow.Ticket, error) {
	if s.machine.Busy() {
		return txflow.Ticket{}, txflow.ErrBusy
	}
	if !s.CanWrite() {
		d := s.Network()
		err := apperr.New(apperr.ConfigError,
			fmt.Sprintf("%s is not available on %s", s.kind.Name, d.Name))
		return s.machine.Reject(err), err
	}
	a, err := build(ctx)
	if err != nil {
		return s.machine.Reject(err), err
	}

	s.mu.Lock()
	b := s.binder
	s.mu.Unlock()
	return s.runner.Run(ctx, txflow.WriterOf(b), a, refresh)
}

// AddressURL links the bound contract on the explorer.
func (s *Session) AddressURL() string {
	addr := s.Address()
	if addr == nil {
		return ""
	}
	return s.Network().AddressURL(addr.Hex())
}

// TxURL links a transaction on the explorer.
func (s *Session) TxURL(hash string) string {
	if hash == "" {
		return ""
	}
	return s.Network().TxURL(hash)
}

// Close unmounts the panel. Results still in flight are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.token = uuid.Nil
	backend := s.backend
	s.mu.Unlock()

	s.machine.Reset()
	if c, ok := backend.(closer); ok {
		c.Close()
	}
}

// Fixed is a Builder for an action that takes no input.
func Fixed(a txflow.Action) Builder {
	return func(context.Context) (txflow.Action, error) { return a, nil }
}
