package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/config"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	"github.com/Mohsinsiddi/bnbpanel/internal/ui"
	"github.com/Mohsinsiddi/bnbpanel/internal/validate"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

// mount is one opened panel plus what has to be released with it.
type mount struct {
	session  *panel.Session
	prompter *ui.Prompter
	closers  []func()
}

func (m *mount) Close() {
	m.session.Close()
	for _, c := range m.closers {
		c()
	}
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(cfg.Dir())),
	)
}

// openProvider builds the wallet named by the config. A local provider
// without a signing wallet behaves like a wallet with no account.
func openProvider(ctx context.Context, reg *network.Registry, p *ui.Prompter) (wallet.Provider, func(), error) {
	switch cfg.Provider {
	case config.ProviderNone:
		return nil, func() {}, nil

	case config.ProviderRemote:
		dctx, cancel := context.WithTimeout(ctx, config.WalletPromptTimeout)
		defer cancel()
		rp, err := wallet.DialRemote(dctx, cfg.ProviderURL)
		if err != nil {
			return nil, nil, apperr.Wrap(apperr.WalletAbsent, "Please install MetaMask or another Web3 wallet", err)
		}
		return rp, rp.Close, nil
	}

	var signer *wallet.Signer
	mgr := newWalletManager()
	w, err := mgr.Resolve(cfg.DefaultWallet)
	switch {
	case err == nil && w.CanSign():
		signer = wallet.NewSigner(w, mgr.Keystore())
	case err == nil:
		log.Warn("wallet is watch-only, writes disabled", zap.String("wallet", w.Name))
	case !errors.Is(err, wallet.ErrWalletNotFound):
		return nil, nil, err
	}

	opts := []wallet.LocalOption{
		wallet.WithConfirm(p.Confirm),
		wallet.WithLogger(log),
	}
	if d, err := reg.Get(cfg.DefaultNetwork); err == nil {
		opts = append(opts, wallet.WithActiveChain(d))
	}
	return wallet.NewLocalProvider(signer, opts...), func() {}, nil
}

// panelNetwork is where kindID mounts. Only crowdfunding follows
// --network; the other panels are pinned to testnet.
func panelNetwork(kindID string) (network.Key, bool) {
	if kindID != contract.CrowdfundID {
		return network.Testnet, false
	}
	if networkFlag != "" {
		return network.Key(networkFlag), true
	}
	return network.Key(cfg.DefaultNetwork), true
}

func openPanel(ctx context.Context, kindID string) (*mount, error) {
	reg := cfg.Registry()
	p := &ui.Prompter{Fallback: ui.Confirm}

	provider, closeProvider, err := openProvider(ctx, reg, p)
	if err != nil {
		return nil, err
	}
	env := panel.Env{
		Registry:       reg,
		Provider:       provider,
		Clock:          clock.RealClock{},
		Log:            log,
		Metrics:        recorder,
		Address:        addressFlag,
		ReceiptPoll:    config.ReceiptPoll,
		ConfirmTimeout: config.TxConfirmTimeout,
	}
	key, switchable := panelNetwork(kindID)

	octx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	s, err := panel.Open(octx, env, kindID, key, switchable)
	if err != nil {
		closeProvider()
		return nil, err
	}
	return &mount{session: s, prompter: p, closers: []func(){closeProvider}}, nil
}

func (m *mount) deps() ui.Deps {
	return ui.Deps{
		Session:     m.session,
		Log:         log,
		Prompter:    m.prompter,
		ReadTimeout: config.ReadTimeout,
		Poll:        cfg.Poll(),
	}
}

// runPanel opens kindID full screen.
func runPanel(kindID string, build func(*mount) tea.Model) error {
	m, err := openPanel(context.Background(), kindID)
	if err != nil {
		return err
	}
	defer m.Close()
	return ui.Run(build(m), m.prompter)
}

// withPanel mounts kindID for a one-shot command.
func withPanel(kindID string, fn func(ctx context.Context, m *mount) error) error {
	ctx := context.Background()
	m, err := openPanel(ctx, kindID)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(ctx, m)
}

// read runs one projector under a spinner.
func read[V any](ctx context.Context, m *mount, what string, fn panel.ProjectFunc[V]) (V, error) {
	spin := ui.NewSpinnerTo(os.Stderr, "Loading "+what+"…")
	spin.Start()
	ctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	res := panel.Project(ctx, m.session, fn)
	spin.Stop()
	return res.View, res.Err
}

// account is the connected address or nil.
func (m *mount) account(ctx context.Context) *common.Address {
	ctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	return m.session.Account(ctx)
}

// submit drives one write and narrates its phases on out. The wallet
// prompt, if any, reads from stdin in between.
func submit(ctx context.Context, m *mount, out io.Writer, build panel.Builder) error {
	m.session.Machine().OnChange(func(st txflow.Status) {
		if st.Phase == txflow.Pending {
			line := ui.Info(st.Message)
			if st.Hash != "" {
				line += "  " + ui.Meta(st.Hash)
			}
			fmt.Fprintln(out, line)
		}
	})
	ctx, cancel := context.WithTimeout(ctx, config.WalletPromptTimeout+config.TxConfirmTimeout)
	defer cancel()

	_, err := m.session.Submit(ctx, build, nil)
	st := m.session.Machine().Status()
	if err != nil {
		msg := st.Message
		if msg == "" {
			msg = apperr.Message(err)
		}
		return errors.New(msg)
	}
	fmt.Fprintln(out, ui.Success(st.Message))
	if st.Hash != "" {
		fmt.Fprintln(out, "  "+ui.Meta(m.session.TxURL(st.Hash)))
	}
	return nil
}

// lookupAddress resolves an optional [addr] argument against the
// connected wallet.
func lookupAddress(ctx context.Context, m *mount, args []string) (common.Address, error) {
	typed := ""
	if len(args) > 0 {
		typed = args[0]
	}
	return validate.LookupAddress(typed, m.account(ctx))
}

// header prints the panel's network line above one-shot output.
func header(out io.Writer, m *mount) {
	s := m.session
	d := s.Network()
	line := ui.ChainName(d.Name) + ui.Meta(" · chain "+d.ChainIDHex())
	if a := s.Address(); a != nil {
		line += ui.Meta(" · ") + ui.Addr(a.Hex())
	}
	fmt.Fprintln(out, line)
	if !s.CanWrite() {
		fmt.Fprintln(out, ui.Warn(s.Kind().Name+" is not available on "+d.Name))
	}
}

// lookup runs one bounded read against the bound contract.
func lookup[T any](ctx context.Context, m *mount, fn func(ctx context.Context, r contract.Caller) (T, error)) (T, error) {
	var zero T
	r, err := m.session.Reader()
	if err != nil {
		return zero, err
	}
	ctx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()
	return fn(ctx, r)
}
