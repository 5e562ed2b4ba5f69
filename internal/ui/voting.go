package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/validate"
	"github.com/Mohsinsiddi/bnbpanel/internal/voting"
	tea "github.com/charmbracelet/bubbletea"
)

// VotingModel is the candidate-list voting panel.
type VotingModel struct {
	f      frame
	slot   panel.Slot[voting.View]
	cursor int
}

// NewVoting builds the voting panel.
func NewVoting(d Deps) *VotingModel {
	return &VotingModel{f: newFrame(d)}
}

func (m *VotingModel) Init() tea.Cmd {
	return tea.Batch(m.f.init(), m.refresh())
}

func (m *VotingModel) refresh() tea.Cmd {
	return refreshCmd(&m.f, voting.Project)
}

func (m *VotingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, handled := m.f.update(msg)
	if handled {
		return m, cmd
	}
	switch msg := msg.(type) {
	case refreshedMsg[voting.View]:
		if applyRefresh(&m.f, &m.slot, msg) {
			if v, _ := m.slot.Get(); m.cursor >= len(v.Candidates) {
				m.cursor = max(len(v.Candidates)-1, 0)
			}
		}
	case submittedMsg:
		if msg.err == nil {
			return m, tea.Batch(cmd, m.refresh())
		}
		return m, cmd
	case tickMsg:
		return m, tickCmd()
	case tea.KeyMsg:
		return m, m.key(msg.String())
	}
	return m, cmd
}

func (m *VotingModel) key(k string) tea.Cmd {
	v, _ := m.slot.Get()
	switch k {
	case "r":
		return m.refresh()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(v.Candidates)-1 {
			m.cursor++
		}
	case "enter":
		if len(v.Candidates) == 0 {
			return nil
		}
		return m.f.guard(func() tea.Cmd { return m.f.submit(voting.Vote(strconv.Itoa(m.cursor))) })
	case "v":
		return m.f.guard(func() tea.Cmd {
			m.f.openForm(NewForm("Vote", [2]string{"Candidate #", ""}), func(form *Form) tea.Cmd {
				return m.f.submit(voting.Vote(form.Value()))
			})
			return nil
		})
	case "s":
		return m.f.guard(func() tea.Cmd { return m.f.submit(voting.Start()) })
	case "e":
		return m.f.guard(func() tea.Cmd { return m.f.submit(voting.End()) })
	case "h":
		m.f.openForm(NewForm("Has voted?", [2]string{"Address", ""}), func(form *Form) tea.Cmd {
			return m.hasVoted(form.Value())
		})
	case "c":
		m.f.openForm(NewForm("Candidate lookup", [2]string{"Index", ""}), func(form *Form) tea.Cmd {
			return m.candidate(form.Value())
		})
	}
	return nil
}

func (m *VotingModel) hasVoted(typed string) tea.Cmd {
	who, err := validate.LookupAddress(typed, m.f.account)
	if err != nil {
		m.f.lookup, m.f.lookupErr = "", err.Error()
		return nil
	}
	return m.f.lookupCmd(func(ctx context.Context, r contract.Caller) (string, error) {
		voted, err := voting.New(r).HasVoted(ctx, who)
		if err != nil {
			return "", err
		}
		if voted {
			return TruncateAddr(who.Hex()) + " has voted", nil
		}
		return TruncateAddr(who.Hex()) + " has not voted", nil
	})
}

func (m *VotingModel) candidate(typed string) tea.Cmd {
	idx, err := validate.CandidateIndex(typed)
	if err != nil {
		m.f.lookup, m.f.lookupErr = "", err.Error()
		return nil
	}
	return m.f.lookupCmd(func(ctx context.Context, r contract.Caller) (string, error) {
		c, err := voting.New(r).Candidate(ctx, idx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Candidate #%s: %s with %s vote(s)", idx, c.Name, c.VoteCount), nil
	})
}

func (m *VotingModel) View() string {
	writes := []string{"[ Enter ] vote", "[ v ] vote by index"}
	v, ok := m.slot.Get()
	if ok && v.IsOwner(m.f.account) {
		writes = append(writes, "[ s ] start", "[ e ] end")
	}
	help := "[ ↑↓ ] select   [ h ] has voted   [ c ] candidate   [ r ] refresh" + m.f.writeHelp(writes...)
	return m.f.render("Voting", m.body(v, ok), m.slot.Err(), help)
}

func (m *VotingModel) body(v voting.View, ok bool) string {
	if !ok {
		return Meta("Loading ballot…")
	}
	return VotingSummary(v, m.cursor)
}
