package ui

import (
	"context"
	"strings"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/apperr"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/countdown"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Deps wires a panel model to its session.
type Deps struct {
	Session  *panel.Session
	Log      *zap.Logger
	Prompter *Prompter
	// ReadTimeout bounds one projector run. Zero means 15 s.
	ReadTimeout time.Duration
	// Poll is the background refresh interval for panels that poll.
	Poll time.Duration
}

// Messages shared by every panel.
type (
	refreshedMsg[V any] struct{ res panel.Result[V] }
	submittedMsg        struct {
		ticket txflow.Ticket
		err    error
	}
	dismissMsg struct{ ticket txflow.Ticket }
	spinMsg    struct{}
	tickMsg    struct{}
	pollMsg    struct{}
	accountMsg struct{ addr *common.Address }
	lookupMsg  struct {
		text string
		err  error
	}
	networkMsg struct{ err error }
)

// frame is the chrome every contract panel shares: status banner, the
// active form or wallet prompt, lookups, the spinner and the dismiss
// timers.
type frame struct {
	d        Deps
	spinning bool
	spin     int
	loading  bool

	form     *Form
	onSubmit func(*Form) tea.Cmd
	prompt   *promptMsg
	picker   *Picker
	onPick   func(PickerItem) tea.Cmd

	lookup    string
	lookupErr string
	flash     string
	account   *common.Address
	quitting  bool
}

func newFrame(d Deps) frame {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.ReadTimeout <= 0 {
		d.ReadTimeout = 15 * time.Second
	}
	return frame{d: d}
}

func (f *frame) session() *panel.Session { return f.d.Session }

func (f *frame) init() tea.Cmd {
	return tea.Batch(f.accountCmd(), tickCmd())
}

func (f *frame) accountCmd() tea.Cmd {
	s := f.session()
	timeout := f.d.ReadTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return accountMsg{addr: s.Account(ctx)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(countdown.Interval, func(time.Time) tea.Msg { return tickMsg{} })
}

func pollCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return pollMsg{} })
}

func (f *frame) startSpin() tea.Cmd {
	if f.spinning {
		return nil
	}
	f.spinning = true
	return tea.Tick(spinInterval, func(time.Time) tea.Msg { return spinMsg{} })
}

// refreshCmd runs fn off the UI goroutine. The result is applied with
// applyRefresh when it comes back.
func refreshCmd[V any](f *frame, fn panel.ProjectFunc[V]) tea.Cmd {
	f.loading = true
	s := f.session()
	timeout := f.d.ReadTimeout
	read := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return refreshedMsg[V]{res: panel.Project(ctx, s, fn)}
	}
	return tea.Batch(read, f.startSpin())
}

// applyRefresh commits a finished read. Results from a previous network
// binding are dropped.
func applyRefresh[V any](f *frame, sl *panel.Slot[V], msg refreshedMsg[V]) bool {
	f.loading = false
	return sl.Apply(f.session(), msg.res)
}

// submit runs one write through the session. The panel refreshes itself
// when submittedMsg reports success.
func (f *frame) submit(build panel.Builder) tea.Cmd {
	s := f.session()
	run := func() tea.Msg {
		tk, err := s.Submit(context.Background(), build, nil)
		return submittedMsg{ticket: tk, err: err}
	}
	return tea.Batch(run, f.startSpin())
}

// lookupCmd runs a one-off read such as pendingReturns(addr).
func (f *frame) lookupCmd(fn func(ctx context.Context, r contract.Caller) (string, error)) tea.Cmd {
	s := f.session()
	timeout := f.d.ReadTimeout
	f.lookup, f.lookupErr = "", ""
	return func() tea.Msg {
		r, err := s.Reader()
		if err != nil {
			return lookupMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		text, err := fn(ctx, r)
		return lookupMsg{text: text, err: err}
	}
}

// openForm shows f and calls submit with it on Enter.
func (f *frame) openForm(form *Form, submit func(*Form) tea.Cmd) {
	f.form, f.onSubmit = form, submit
	f.flash = ""
}

func (f *frame) openPicker(p *Picker, pick func(PickerItem) tea.Cmd) {
	f.picker, f.onPick = p, pick
}

// update handles the messages every panel shares. handled is false for
// messages the panel must process itself.
func (f *frame) update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case submittedMsg:
		if msg.ticket.Valid() {
			tk := msg.ticket
			cmd = tea.Tick(tk.After, func(time.Time) tea.Msg { return dismissMsg{ticket: tk} })
		}
		return cmd, false

	case dismissMsg:
		f.session().Machine().Dismiss(msg.ticket)
		return nil, true

	case spinMsg:
		f.spin++
		if f.session().Machine().Busy() || f.loading || f.prompt != nil {
			return tea.Tick(spinInterval, func(time.Time) tea.Msg { return spinMsg{} }), true
		}
		f.spinning = false
		return nil, true

	case promptMsg:
		if f.prompt != nil {
			// One prompt at a time; a second request is declined.
			msg.reply <- false
			return nil, true
		}
		f.prompt = &msg
		return nil, true

	case accountMsg:
		f.account = msg.addr
		return nil, false

	case lookupMsg:
		if msg.err != nil {
			f.lookup, f.lookupErr = "", apperr.Message(msg.err)
		} else {
			f.lookup, f.lookupErr = msg.text, ""
		}
		return nil, true

	case tea.KeyMsg:
		return f.key(msg)
	}
	return nil, false
}

func (f *frame) key(k tea.KeyMsg) (tea.Cmd, bool) {
	if f.prompt != nil {
		switch k.String() {
		case "y", "Y", "enter":
			f.answer(true)
		case "n", "N", "esc", "q", "ctrl+c":
			f.answer(false)
		}
		return nil, true
	}
	if f.form != nil {
		switch f.form.Update(k) {
		case formSubmitted:
			form, submit := f.form, f.onSubmit
			f.form, f.onSubmit = nil, nil
			return submit(form), true
		case formCancelled:
			f.form, f.onSubmit = nil, nil
		}
		return nil, true
	}
	if f.picker != nil {
		chosen, done := f.picker.Update(k)
		if !done {
			return nil, true
		}
		pick := f.onPick
		f.picker, f.onPick = nil, nil
		if chosen != nil {
			return pick(*chosen), true
		}
		return nil, true
	}

	f.flash = ""
	switch k.String() {
	case "q", "ctrl+c", "esc":
		f.quitting = true
		return tea.Quit, true
	case "o":
		if url := f.session().AddressURL(); url != "" {
			if err := openBrowser(url); err != nil {
				f.flash = "Could not open browser"
			} else {
				f.flash = "Opening explorer…"
			}
		}
		return nil, true
	case "O":
		if h := f.session().Machine().Status().Hash; h != "" {
			_ = openBrowser(f.session().TxURL(h))
			f.flash = "Opening transaction…"
		} else {
			f.flash = "No transaction to open"
		}
		return nil, true
	case "C":
		if a := f.session().Address(); a != nil {
			if err := copyToClipboard(a.Hex()); err != nil {
				f.flash = "Copy failed"
			} else {
				f.flash = "Copied: " + TruncateAddr(a.Hex())
			}
		}
		return nil, true
	}
	return nil, false
}

func (f *frame) answer(ok bool) {
	if f.prompt == nil {
		return
	}
	f.prompt.reply <- ok
	f.prompt = nil
}

// quit declines any open wallet prompt so the submitting goroutine is not
// left blocked.
func (f *frame) quit() { f.answer(false) }

// busy reports whether write actions must stay disabled.
func (f *frame) busy() bool { return f.session().Machine().Busy() }

// guard returns a flash instead of an action while a write is pending or
// when the feature cannot be written on this network.
func (f *frame) guard(cmd func() tea.Cmd) tea.Cmd {
	if s := f.session(); !s.CanWrite() {
		f.flash = s.Kind().Name + " is not available on " + s.Network().Name
		return nil
	}
	if f.busy() {
		f.flash = "A transaction is already in progress"
		return nil
	}
	return cmd()
}

// writeHelp joins write-action key hints, or drops them all when the
// feature cannot be written on this network.
func (f *frame) writeHelp(keys ...string) string {
	if !f.session().CanWrite() || len(keys) == 0 {
		return ""
	}
	return "   " + strings.Join(keys, "   ")
}

func (f *frame) header(title string) string {
	s := f.session()
	d := s.Network()
	var sb strings.Builder
	sb.WriteString(Banner() + "\n")
	sb.WriteString(StyleTitle.Render(title) + "  " + ChainName(d.Name) + StyleMeta.Render(" · chain "+d.ChainIDHex()))
	if a := s.Address(); a != nil {
		sb.WriteString(StyleMeta.Render(" · ") + Addr(TruncateAddr(a.Hex())))
	}
	sb.WriteString("\n")
	switch {
	case f.account != nil:
		sb.WriteString(Meta("Wallet ") + Addr(f.account.Hex()))
	default:
		sb.WriteString(Warn("Wallet not connected"))
	}
	if !s.CanWrite() {
		sb.WriteString("  " + Warn(s.Kind().Name+" is not available on "+d.Name))
	}
	return sb.String()
}

func (f *frame) status() string {
	st := f.session().Machine().Status()
	switch st.Phase {
	case txflow.Pending:
		line := Frame(f.spin) + " " + StyleWarning.Render(st.Message)
		if st.Hash != "" {
			line += "  " + Addr(TruncateAddr(st.Hash))
		}
		return line
	case txflow.Success:
		line := Success(st.Message)
		if st.Hash != "" {
			line += "\n  " + Meta(f.session().TxURL(st.Hash))
		}
		return line
	case txflow.Error:
		return Err(st.Message)
	}
	if f.loading {
		return Frame(f.spin) + " " + Meta("Refreshing…")
	}
	return ""
}

// render lays out header, body, banners, the active overlay and help.
func (f *frame) render(title, body, contractErr, help string) string {
	if f.quitting {
		return ""
	}
	parts := []string{f.header(title), body}
	if contractErr != "" {
		parts = append(parts, Err(contractErr))
	}
	if f.lookup != "" {
		parts = append(parts, Info(f.lookup))
	}
	if f.lookupErr != "" {
		parts = append(parts, Err(f.lookupErr))
	}
	if st := f.status(); st != "" {
		parts = append(parts, st)
	}
	switch {
	case f.prompt != nil:
		parts = append(parts, StyleBorder.Render(StyleWarning.Render(f.prompt.text)+"\n"+Meta("[ y ] approve   [ n ] reject")))
	case f.form != nil:
		parts = append(parts, StyleBorder.Render(f.form.View()))
	case f.picker != nil:
		parts = append(parts, StyleBorder.Render(f.picker.View()))
	}
	if f.flash != "" {
		parts = append(parts, Warn(f.flash))
	}
	parts = append(parts, Meta(help+"   [ o ] explorer   [ C ] copy address   [ q ] quit"))
	return strings.Join(parts, "\n\n") + "\n"
}
