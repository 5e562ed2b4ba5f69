package ui

import (
	"context"

	"github.com/Mohsinsiddi/bnbpanel/internal/auction"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/countdown"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/units"
	"github.com/Mohsinsiddi/bnbpanel/internal/validate"
	tea "github.com/charmbracelet/bubbletea"
)

// AuctionModel is the English auction panel.
type AuctionModel struct {
	f    frame
	slot panel.Slot[auction.View]
	cd   countdown.Countdown
}

// NewAuction builds the auction panel.
func NewAuction(d Deps) *AuctionModel {
	return &AuctionModel{f: newFrame(d)}
}

func (m *AuctionModel) Init() tea.Cmd {
	return tea.Batch(m.f.init(), m.refresh())
}

func (m *AuctionModel) refresh() tea.Cmd {
	return refreshCmd(&m.f, auction.Project)
}

func (m *AuctionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, handled := m.f.update(msg)
	if handled {
		return m, cmd
	}
	switch msg := msg.(type) {
	case refreshedMsg[auction.View]:
		if applyRefresh(&m.f, &m.slot, msg) && msg.res.Err == nil {
			m.cd = msg.res.View.Countdown()
		}
	case submittedMsg:
		if msg.err == nil {
			return m, tea.Batch(cmd, m.refresh())
		}
		return m, cmd
	case tickMsg:
		m.cd = m.cd.Tick()
		return m, tickCmd()
	case tea.KeyMsg:
		return m, m.key(msg.String())
	}
	return m, cmd
}

func (m *AuctionModel) key(k string) tea.Cmd {
	switch k {
	case "r":
		return m.refresh()
	case "b":
		return m.f.guard(func() tea.Cmd {
			m.f.openForm(NewForm("Place bid ("+m.symbol()+")", [2]string{"Amount", ""}), func(form *Form) tea.Cmd {
				v, _ := m.slot.Get()
				return m.f.submit(auction.PlaceBid(form.Value(), v, m.cd.Remaining))
			})
			return nil
		})
	case "w":
		return m.f.guard(func() tea.Cmd { return m.f.submit(auction.Withdraw()) })
	case "e":
		return m.f.guard(func() tea.Cmd { return m.f.submit(auction.EndEarly()) })
	case "p":
		return m.f.guard(func() tea.Cmd { return m.f.submit(auction.WithdrawProceeds()) })
	case "l":
		m.f.openForm(NewForm("Pending returns lookup", [2]string{"Address", ""}), func(form *Form) tea.Cmd {
			return m.pendingReturns(form.Value())
		})
	}
	return nil
}

func (m *AuctionModel) pendingReturns(typed string) tea.Cmd {
	who, err := validate.LookupAddress(typed, m.f.account)
	if err != nil {
		m.f.lookup, m.f.lookupErr = "", err.Error()
		return nil
	}
	sym := m.symbol()
	return m.f.lookupCmd(func(ctx context.Context, r contract.Caller) (string, error) {
		amt, err := auction.New(r).PendingReturns(ctx, who)
		if err != nil {
			return "", err
		}
		return "Pending returns for " + TruncateAddr(who.Hex()) + ": " + units.FormatEther(amt) + " " + sym, nil
	})
}

func (m *AuctionModel) symbol() string { return m.f.session().Network().Currency.Symbol }

func (m *AuctionModel) View() string {
	writes := []string{"[ b ] bid", "[ w ] withdraw"}
	v, ok := m.slot.Get()
	if ok && v.IsOwner(m.f.account) {
		writes = append(writes, "[ e ] end early", "[ p ] withdraw proceeds")
	}
	help := "[ l ] pending returns   [ r ] refresh" + m.f.writeHelp(writes...)
	return m.f.render("English Auction", m.body(v, ok), m.slot.Err(), help)
}

func (m *AuctionModel) body(v auction.View, ok bool) string {
	if !ok {
		return Meta("Loading auction…")
	}
	return AuctionSummary(v, m.cd.Remaining, m.f.account, m.symbol())
}
