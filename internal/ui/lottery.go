package ui

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/countdown"
	"github.com/Mohsinsiddi/bnbpanel/internal/lottery"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/txflow"
	"github.com/Mohsinsiddi/bnbpanel/internal/validate"
	tea "github.com/charmbracelet/bubbletea"
	"k8s.io/utils/clock"
)

// LotteryModel is the multi-round lottery panel.
type LotteryModel struct {
	f        frame
	clock    clock.PassiveClock
	slot     panel.Slot[lottery.View]
	cd       countdown.Countdown
	selected uint64
}

// NewLottery builds the lottery panel. Round end times are compared with
// c; nil uses the wall clock.
func NewLottery(d Deps, c clock.PassiveClock) *LotteryModel {
	if c == nil {
		c = clock.RealClock{}
	}
	return &LotteryModel{f: newFrame(d), clock: c}
}

func (m *LotteryModel) Init() tea.Cmd {
	return tea.Batch(m.f.init(), m.refresh())
}

func (m *LotteryModel) projector() lottery.Projector {
	return lottery.Projector{Clock: m.clock, Selected: m.selected, User: m.f.account}
}

func (m *LotteryModel) refresh() tea.Cmd {
	return refreshCmd(&m.f, m.projector().Project)
}

func (m *LotteryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, handled := m.f.update(msg)
	if handled {
		return m, cmd
	}
	switch msg := msg.(type) {
	case refreshedMsg[lottery.View]:
		if applyRefresh(&m.f, &m.slot, msg) && msg.res.Err == nil {
			m.cd = msg.res.View.Countdown()
			m.selected = msg.res.View.RoundID
		}
	case accountMsg:
		// The ticket count needs the account.
		return m, m.refresh()
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

func (m *LotteryModel) key(k string) tea.Cmd {
	v, _ := m.slot.Get()
	switch k {
	case "r":
		return m.refresh()
	case "left", "h":
		if prev := lottery.Prev(m.selected, v.RoundCount); prev != m.selected {
			m.selected = prev
			return m.refresh()
		}
	case "right", "l":
		if next := lottery.Next(m.selected, v.RoundCount); next != m.selected {
			m.selected = next
			return m.refresh()
		}
	case "t":
		return m.f.guard(func() tea.Cmd {
			m.f.openForm(NewForm(fmt.Sprintf("Buy tickets for round #%d", v.RoundID), [2]string{"Quantity", "1"}), func(form *Form) tea.Cmd {
				cur, _ := m.slot.Get()
				return m.f.submit(m.buy(cur, form.Value()))
			})
			return nil
		})
	case "n":
		return m.f.guard(func() tea.Cmd {
			form := NewForm("Create round", [2]string{"Ticket price", "0.01"}, [2]string{"Duration (s)", "3600"})
			m.f.openForm(form, func(form *Form) tea.Cmd {
				vals := form.Values()
				m.selected = 0
				return m.f.submit(lottery.CreateRound(vals[0], vals[1]))
			})
			return nil
		})
	case "x":
		return m.f.guard(func() tea.Cmd { return m.f.submit(lottery.CloseRound(v)) })
	case "w":
		return m.f.guard(func() tea.Cmd { return m.f.submit(lottery.PickWinner(v)) })
	case "k":
		m.f.openForm(NewForm("Ticket lookup", [2]string{"Address", ""}), func(form *Form) tea.Cmd {
			return m.tickets(v.RoundID, form.Value())
		})
	}
	return nil
}

func (m *LotteryModel) buy(v lottery.View, qty string) panel.Builder {
	return func(ctx context.Context) (txflow.Action, error) {
		r, err := m.f.session().Reader()
		if err != nil {
			return txflow.Action{}, err
		}
		return lottery.BuyTickets(r, v, qty)(ctx)
	}
}

func (m *LotteryModel) tickets(round uint64, typed string) tea.Cmd {
	who, err := validate.LookupAddress(typed, m.f.account)
	if err != nil {
		m.f.lookup, m.f.lookupErr = "", err.Error()
		return nil
	}
	return m.f.lookupCmd(func(ctx context.Context, r contract.Caller) (string, error) {
		n, err := lottery.New(r).Tickets(ctx, round, who)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s holds %s ticket(s) in round #%d", TruncateAddr(who.Hex()), n, round), nil
	})
}

func (m *LotteryModel) View() string {
	writes := []string{"[ t ] buy tickets"}
	v, ok := m.slot.Get()
	if ok && v.IsOwner(m.f.account) {
		writes = append(writes, "[ n ] new round", "[ x ] close round", "[ w ] pick winner")
	}
	help := "[ ←/→ ] round   [ k ] ticket lookup   [ r ] refresh" + m.f.writeHelp(writes...)
	return m.f.render("Lottery", m.body(v, ok), m.slot.Err(), help)
}

func (m *LotteryModel) body(v lottery.View, ok bool) string {
	if !ok {
		return Meta("Loading lottery…")
	}
	return LotterySummary(v, m.cd.Remaining, m.f.account, m.f.session().Network().Currency.Symbol)
}
