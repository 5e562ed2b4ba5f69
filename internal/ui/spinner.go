package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinInterval is the frame rate shared by the stdout spinner and the
// panels.
const spinInterval = 80 * time.Millisecond

// Frame returns spinner frame i.
func Frame(i int) string {
	return StyleChain.Render(spinnerFrames[i%len(spinnerFrames)])
}

// Spinner animates a loading indicator for one-shot commands. Panels draw
// Frame from their own tick instead.
type Spinner struct {
	out  io.Writer
	mu   sync.Mutex
	msg  string
	stop chan struct{}
	done chan struct{}
}

// NewSpinner creates a spinner writing to stdout.
func NewSpinner(msg string) *Spinner {
	return NewSpinnerTo(os.Stdout, msg)
}

// NewSpinnerTo creates a spinner writing to out.
func NewSpinnerTo(out io.Writer, msg string) *Spinner {
	return &Spinner{
		out:  out,
		msg:  msg,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Update replaces the message, e.g. when a transaction moves from the
// wallet prompt to mining.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
}

// Start begins the spinner animation in a goroutine.
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		t := time.NewTicker(spinInterval)
		defer t.Stop()
		for i := 0; ; i++ {
			s.mu.Lock()
			msg := s.msg
			s.mu.Unlock()
			fmt.Fprintf(s.out, "\r%s  %-60s", Frame(i), msg)
			select {
			case <-s.stop:
				fmt.Fprintf(s.out, "\r%-64s\r", "") // clear line
				return
			case <-t.C:
			}
		}
	}()
}

// Stop halts the spinner and waits for it to finish.
func (s *Spinner) Stop() {
	close(s.stop)
	<-s.done
}

// StopWithMsg halts the spinner and prints a final message.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, msg)
}
