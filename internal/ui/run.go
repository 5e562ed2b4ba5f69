package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows m full screen until the user quits. Wallet prompts raised
// while it runs are answered inside the panel.
func Run(m tea.Model, p *Prompter) error {
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if p != nil {
		p.Attach(prog.Send)
		defer p.Detach()
	}
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	return nil
}
