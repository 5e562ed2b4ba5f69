package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/crowdfund"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/units"
	"github.com/Mohsinsiddi/bnbpanel/internal/validate"
	tea "github.com/charmbracelet/bubbletea"
	"k8s.io/utils/clock"
)

// CrowdfundModel is the crowdfunding panel. It polls and can switch
// networks.
type CrowdfundModel struct {
	f        frame
	clock    clock.PassiveClock
	slot     panel.Slot[crowdfund.View]
	selected uint64

	// draft survives a failed create so the user can fix one field.
	draft    crowdfund.Form
	creating bool
}

// NewCrowdfund builds the crowdfunding panel.
func NewCrowdfund(d Deps, c clock.PassiveClock) *CrowdfundModel {
	if c == nil {
		c = clock.RealClock{}
	}
	if d.Poll <= 0 {
		d.Poll = crowdfund.PollInterval
	}
	return &CrowdfundModel{f: newFrame(d), clock: c, draft: crowdfund.NewForm()}
}

func (m *CrowdfundModel) Init() tea.Cmd {
	return tea.Batch(m.f.init(), m.refresh(), pollCmd(m.f.d.Poll))
}

func (m *CrowdfundModel) refresh() tea.Cmd {
	p := crowdfund.Projector{Selected: m.selected, User: m.f.account}
	return refreshCmd(&m.f, p.Project)
}

func (m *CrowdfundModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, handled := m.f.update(msg)
	if handled {
		return m, cmd
	}
	switch msg := msg.(type) {
	case refreshedMsg[crowdfund.View]:
		if applyRefresh(&m.f, &m.slot, msg) && msg.res.Err == nil {
			m.selected = msg.res.View.CampaignID
		}
	case accountMsg:
		return m, m.refresh()
	case submittedMsg:
		if m.creating {
			m.creating = false
			if msg.err == nil {
				m.draft = crowdfund.NewForm()
				m.selected = 0
			}
		}
		if msg.err == nil {
			return m, tea.Batch(cmd, m.refresh())
		}
		return m, cmd
	case pollMsg:
		return m, tea.Batch(m.refresh(), pollCmd(m.f.d.Poll))
	case networkMsg:
		if msg.err != nil {
			m.f.flash = msg.err.Error()
			return m, nil
		}
		m.slot.Reset()
		m.selected = 0
		return m, m.refresh()
	case tickMsg:
		return m, tickCmd()
	case tea.KeyMsg:
		return m, m.key(msg.String())
	}
	return m, cmd
}

func (m *CrowdfundModel) key(k string) tea.Cmd {
	v, _ := m.slot.Get()
	now := m.clock.Now()
	acct := m.f.account
	switch k {
	case "r":
		return m.refresh()
	case "left", "h":
		if prev := crowdfund.Prev(m.selected, v.Count); prev != m.selected {
			m.selected = prev
			return m.refresh()
		}
	case "right", "l":
		if next := crowdfund.Next(m.selected, v.Count); next != m.selected {
			m.selected = next
			return m.refresh()
		}
	case "g":
		if !m.f.session().Switchable() {
			m.f.flash = "This panel is locked to " + m.f.session().Network().Name
			return nil
		}
		m.f.openPicker(m.networkPicker(), func(it PickerItem) tea.Cmd {
			return m.selectNetwork(it.Value)
		})
	case "f":
		if !v.CanFund(now) {
			m.f.flash = "This campaign is not accepting funds"
			return nil
		}
		return m.f.guard(func() tea.Cmd {
			m.f.openForm(NewForm("Fund campaign ("+m.symbol()+")", [2]string{"Amount", crowdfund.DefaultFundAmount}), func(form *Form) tea.Cmd {
				cur, _ := m.slot.Get()
				return m.f.submit(crowdfund.Fund(cur, form.Value()))
			})
			return nil
		})
	case "n":
		return m.f.guard(func() tea.Cmd {
			d := m.draft
			form := NewForm("New campaign",
				[2]string{"Title", d.Title},
				[2]string{"Description", d.Description},
				[2]string{"Image URL", d.ImageURL},
				[2]string{"Goal (" + m.symbol() + ")", d.Goal},
				[2]string{"Duration (days)", d.Days},
			)
			m.f.openForm(form, func(form *Form) tea.Cmd {
				vals := form.Values()
				m.draft = crowdfund.Form{Title: vals[0], Description: vals[1], ImageURL: vals[2], Goal: vals[3], Days: vals[4]}
				m.creating = true
				return m.f.submit(crowdfund.Create(m.draft))
			})
			return nil
		})
	case "w":
		if !v.CanWithdraw(acct) {
			m.f.flash = "Only the creator of a funded campaign can withdraw"
			return nil
		}
		return m.f.guard(func() tea.Cmd { return m.f.submit(crowdfund.Withdraw(v)) })
	case "x":
		if !v.CanCancel(acct) {
			m.f.flash = "Only the creator can cancel an active campaign"
			return nil
		}
		return m.f.guard(func() tea.Cmd { return m.f.submit(crowdfund.Cancel(v)) })
	case "u":
		if !v.CanRefund(acct, now) {
			m.f.flash = "No refund available"
			return nil
		}
		return m.f.guard(func() tea.Cmd { return m.f.submit(crowdfund.Refund(v)) })
	case "k":
		m.f.openForm(NewForm("Contribution lookup", [2]string{"Address", ""}), func(form *Form) tea.Cmd {
			return m.contribution(v.CampaignID, form.Value())
		})
	}
	return nil
}

func (m *CrowdfundModel) networkPicker() *Picker {
	s := m.f.session()
	var items []PickerItem
	for _, d := range s.Networks() {
		items = append(items, PickerItem{
			Label:    d.Name,
			SubLabel: fmt.Sprintf("chain %d", d.ChainID),
			Value:    string(d.Key),
			Disabled: !d.Enabled,
		})
	}
	return NewPicker("Select network", items, string(s.Network().Key))
}

func (m *CrowdfundModel) selectNetwork(key string) tea.Cmd {
	s := m.f.session()
	timeout := m.f.d.ReadTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return networkMsg{err: s.SelectNetwork(ctx, key)}
	}
}

func (m *CrowdfundModel) contribution(id uint64, typed string) tea.Cmd {
	if id == 0 {
		m.f.lookup, m.f.lookupErr = "", "No campaign selected"
		return nil
	}
	who, err := validate.LookupAddress(typed, m.f.account)
	if err != nil {
		m.f.lookup, m.f.lookupErr = "", err.Error()
		return nil
	}
	sym := m.symbol()
	return m.f.lookupCmd(func(ctx context.Context, r contract.Caller) (string, error) {
		n, err := crowdfund.New(r).Contribution(ctx, id, who)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s contributed %s %s to campaign #%d", TruncateAddr(who.Hex()), units.FormatEther(n), sym, id), nil
	})
}

func (m *CrowdfundModel) symbol() string { return m.f.session().Network().Currency.Symbol }

func (m *CrowdfundModel) View() string {
	v, ok := m.slot.Get()
	now := m.clock.Now()
	acct := m.f.account

	help := "[ ←/→ ] campaign   [ k ] contribution   [ r ] refresh"
	if m.f.session().Switchable() {
		help += "   [ g ] network"
	}
	writes := []string{"[ n ] new"}
	if ok {
		if v.CanFund(now) {
			writes = append(writes, "[ f ] fund")
		}
		if v.CanWithdraw(acct) {
			writes = append(writes, "[ w ] withdraw")
		}
		if v.CanCancel(acct) {
			writes = append(writes, "[ x ] cancel")
		}
		if v.CanRefund(acct, now) {
			writes = append(writes, "[ u ] claim refund")
		}
	}
	help += m.f.writeHelp(writes...)
	return m.f.render("Crowdfunding", m.body(v, ok, now), m.slot.Err(), help)
}

func (m *CrowdfundModel) body(v crowdfund.View, ok bool, now time.Time) string {
	if !ok {
		return Meta("Loading campaigns…")
	}
	if v.Campaign == nil {
		if !m.f.session().CanWrite() {
			return Meta("No campaigns yet.")
		}
		return Meta("No campaigns yet. Press n to create one.")
	}
	return CrowdfundSummary(v, m.f.account, now, m.symbol())
}
