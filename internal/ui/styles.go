package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green  — success, open
	ColorWarning   = lipgloss.Color("#F0B90B") // BNB yellow — pending, hints
	ColorError     = lipgloss.Color("#FF4444") // red    — errors, ended
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan   — addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold — amounts
	ColorMeta      = lipgloss.Color("#666666") // dim gray  — labels, help
	ColorBorder    = lipgloss.Color("#3A3A1E") // dark olive — UI chrome
	ColorChain     = lipgloss.Color("#F0B90B") // network names
	ColorHighlight = lipgloss.Color("#F3BA2F") // selected rows
	ColorInfo      = lipgloss.Color("#7DA7FF") // blue — lookups
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleChain   = lipgloss.NewStyle().Foreground(ColorChain).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorChain).
			Bold(true).
			MarginBottom(1)

	StyleDim = lipgloss.NewStyle().Foreground(ColorMeta)
)

// Banner returns the bnbpanel header line.
func Banner() string {
	return StyleChain.Render("◆ bnbpanel") + StyleMeta.Render("  auction · lottery · voting · crowdfunding")
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats a lookup result.
func Info(msg string) string { return StyleInfo.Render("» " + msg) }

// Hint formats a muted note such as "owner only".
func Hint(msg string) string { return StyleMeta.Render("(" + msg + ")") }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// ChainName formats a network name.
func ChainName(c string) string { return StyleChain.Render(c) }

// Amount renders a base-unit amount already formatted as decimal text with
// the network's native symbol.
func Amount(decimal, symbol string) string {
	return StyleValue.Render(decimal) + " " + StyleMeta.Render(symbol)
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// ProgressBar draws frac (clamped to [0,1]) as a bar of width cells with
// the percentage after it.
func ProgressBar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	if width < 1 {
		width = 1
	}
	filled := int(frac*float64(width) + 0.5)
	bar := StyleSuccess.Render(strings.Repeat("█", filled)) +
		StyleMeta.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3.0f%%", bar, frac*100)
}
