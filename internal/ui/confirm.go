package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Confirm prompts the user with a yes/no question on stdin. Returns true
// for yes.
func Confirm(prompt string) bool {
	return confirmOn(os.Stdin, os.Stdout, StyleWarning.Render(prompt))
}

// ConfirmDanger is like Confirm but styled with the error color (for
// mainnet writes and key removal).
func ConfirmDanger(prompt string) bool {
	return confirmOn(os.Stdin, os.Stdout, StyleError.Render("⚠ "+prompt))
}

func confirmOn(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// promptMsg asks the running panel to show a wallet approval prompt.
type promptMsg struct {
	text  string
	reply chan<- bool
}

// Prompter routes wallet approval prompts to whichever UI is active: the
// running panel when one is attached, stdin otherwise.
type Prompter struct {
	mu   sync.Mutex
	send func(tea.Msg)
	done chan struct{}
	// Fallback answers while no panel is attached. Defaults to Confirm.
	Fallback func(string) bool
}

// Confirm blocks until the user answers. It is safe to call from any
// goroutine. A prompt still open when the panel closes is declined.
func (p *Prompter) Confirm(text string) bool {
	p.mu.Lock()
	send, done := p.send, p.done
	p.mu.Unlock()
	if send == nil {
		if p.Fallback != nil {
			return p.Fallback(text)
		}
		return Confirm(text)
	}
	reply := make(chan bool, 1)
	go send(promptMsg{text: text, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-done:
		return false
	}
}

// Attach sends future prompts to a running program.
func (p *Prompter) Attach(send func(tea.Msg)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.send = send
	p.done = make(chan struct{})
}

// Detach returns to the fallback and declines prompts still waiting.
func (p *Prompter) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		close(p.done)
	}
	p.send, p.done = nil, nil
}
