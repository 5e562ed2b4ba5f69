package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestConfirmOn(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, confirmOn(strings.NewReader(tt.in), &out, "Switch network?"), "%q", tt.in)
		assert.Contains(t, out.String(), "[y/N]")
	}
}

func TestPrompterFallback(t *testing.T) {
	var asked string
	p := &Prompter{Fallback: func(s string) bool { asked = s; return true }}
	assert.True(t, p.Confirm("Sign transaction?"))
	assert.Equal(t, "Sign transaction?", asked)
}

func TestPrompterRoutesToPanel(t *testing.T) {
	p := &Prompter{Fallback: func(string) bool { t.Fatal("fallback used"); return false }}
	p.Attach(func(msg tea.Msg) {
		pm := msg.(promptMsg)
		pm.reply <- pm.text == "approve me"
	})
	defer p.Detach()

	assert.True(t, p.Confirm("approve me"))
	assert.False(t, p.Confirm("other"))
}

func TestPrompterDetachDeclinesWaitingPrompt(t *testing.T) {
	p := &Prompter{}
	p.Attach(func(tea.Msg) {}) // never answers

	got := make(chan bool)
	go func() { got <- p.Confirm("Sign?") }()

	time.Sleep(20 * time.Millisecond)
	p.Detach()
	select {
	case ok := <-got:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("prompt still blocked after detach")
	}
}
