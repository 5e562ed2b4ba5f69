package ui

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	DefaultNetwork string
	Provider       string
	ProviderURL    string
	Cancelled      bool
}

// --- Bubble Tea model ---

type wizardStep int

const (
	stepNetwork wizardStep = iota
	stepProvider
	stepProviderURL
	stepDone
)

type wizardModel struct {
	step      wizardStep
	result    WizardResult
	cursor    int
	networks  []network.Descriptor
	choices   []string
	input     string
	inputMode bool
	notice    string
}

var providers = []string{"local", "remote", "none"}

var providerNotes = map[string]string{
	"local":  "sign with a key stored in the OS keychain",
	"remote": "forward to an external wallet over JSON-RPC",
	"none":   "read-only",
}

func initialWizard(reg *network.Registry, providerURL string) wizardModel {
	m := wizardModel{step: stepNetwork, networks: reg.All()}
	m.result.ProviderURL = providerURL
	for _, d := range m.networks {
		m.choices = append(m.choices, d.Name)
	}
	return m
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.notice = ""
	switch k.String() {
	case "ctrl+c":
		m.result.Cancelled = true
		return m, tea.Quit

	case "q":
		if !m.inputMode {
			m.result.Cancelled = true
			return m, tea.Quit
		}
		m.input += "q"

	case "up", "k":
		if !m.inputMode && m.cursor > 0 {
			m.cursor--
		} else if m.inputMode && k.String() == "k" {
			m.input += "k"
		}

	case "down", "j":
		if !m.inputMode && m.cursor < len(m.choices)-1 {
			m.cursor++
		} else if m.inputMode && k.String() == "j" {
			m.input += "j"
		}

	case "enter":
		if m.inputMode {
			if url := strings.TrimSpace(m.input); url != "" {
				m.result.ProviderURL = url
			}
			m.inputMode = false
			m.step = stepDone
		} else if m.applyChoice() {
			m.advance()
		}

	case "backspace":
		if m.inputMode && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}

	default:
		if m.inputMode && k.Type == tea.KeyRunes {
			m.input += string(k.Runes)
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) advance() {
	m.cursor = 0
	switch m.step {
	case stepNetwork:
		m.step = stepProvider
		m.choices = providers
	case stepProvider:
		if m.result.Provider == "remote" {
			m.step = stepProviderURL
			m.choices = nil
			m.inputMode = true
			m.input = m.result.ProviderURL
			return
		}
		m.step = stepDone
	}
}

// applyChoice records the highlighted entry. Disabled networks are
// refused.
func (m *wizardModel) applyChoice() bool {
	switch m.step {
	case stepNetwork:
		d := m.networks[m.cursor]
		if !d.Enabled {
			m.notice = d.Name + " is not available yet"
			return false
		}
		m.result.DefaultNetwork = string(d.Key)
	case stepProvider:
		m.result.Provider = m.choices[m.cursor]
	}
	return true
}

func (m wizardModel) View() string {
	var s string

	switch m.step {
	case stepNetwork:
		var notes []string
		for _, d := range m.networks {
			note := fmt.Sprintf("chain %d", d.ChainID)
			if !d.Enabled {
				note += " · disabled"
			}
			notes = append(notes, note)
		}
		s = renderMenu("Select default network:", m.choices, notes, m.cursor)
	case stepProvider:
		var notes []string
		for _, p := range providers {
			notes = append(notes, providerNotes[p])
		}
		s = renderMenu("Select wallet provider:", m.choices, notes, m.cursor)
	case stepProviderURL:
		s = StyleTitle.Render("External wallet endpoint") + "\n\n"
		s += StyleMeta.Render("EIP-1193 JSON-RPC URL (Enter keeps the default):") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}
	if m.notice != "" {
		s += "\n" + Warn(m.notice)
	}

	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items, notes []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		line := icon + style.Render(item)
		if i < len(notes) && notes[i] != "" {
			line += "  " + StyleMeta.Render(notes[i])
		}
		s += line + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · q quit")
	return s
}

// RunWizard launches the interactive setup wizard and returns the result.
// providerURL is the current endpoint offered as the default.
func RunWizard(reg *network.Registry, providerURL string) (*WizardResult, error) {
	m := initialWizard(reg, providerURL)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	result := final.(wizardModel).result
	return &result, nil
}
