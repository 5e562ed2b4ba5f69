package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // primary text (e.g. network name)
	SubLabel string // secondary text shown dimmed (e.g. chain id)
	Value    string // value returned on selection (may differ from Label)
	// Disabled items are listed but cannot be chosen.
	Disabled bool
}

// Picker is a list selector that can run on its own (PickItem) or inside
// a panel.
type Picker struct {
	Title  string
	Items  []PickerItem
	cursor int
	// Refused is set when the last Enter hit a disabled item.
	Refused string
}

// NewPicker starts with the cursor on the item whose Value is current.
func NewPicker(title string, items []PickerItem, current string) *Picker {
	p := &Picker{Title: title, Items: items}
	for i, it := range items {
		if it.Value == current {
			p.cursor = i
		}
	}
	return p
}

// Update applies one key. It returns the chosen item on Enter, and done
// when the picker should close (chosen or cancelled).
func (p *Picker) Update(k tea.KeyMsg) (chosen *PickerItem, done bool) {
	p.Refused = ""
	switch k.String() {
	case "q", "ctrl+c", "esc":
		return nil, true
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.Items)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.Items) == 0 {
			return nil, true
		}
		item := p.Items[p.cursor]
		if item.Disabled {
			p.Refused = item.Label + " is not available"
			return nil, false
		}
		return &item, true
	}
	return nil, false
}

func (p *Picker) View() string {
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("  "+p.Title) + "\n")

	for i, item := range p.Items {
		prefix := "    "
		if i == p.cursor {
			prefix = "  ▸ "
		}

		label := StyleValue.Render(item.Label)
		if item.Disabled {
			label = StyleDim.Render(item.Label + " (disabled)")
		}
		line := prefix + label
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}

		if i == p.cursor && !item.Disabled {
			sb.WriteString(StyleSelected.Render(line) + "\n")
		} else {
			sb.WriteString(line + "\n")
		}
	}
	if p.Refused != "" {
		sb.WriteString(Warn(p.Refused) + "\n")
	}

	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ Enter ] select   [ q ] cancel"))
	return sb.String()
}

// pickerModel runs a Picker as its own program.
type pickerModel struct {
	p        *Picker
	selected *PickerItem
	quitting bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		chosen, done := m.p.Update(k)
		if done {
			m.selected = chosen
			m.quitting = chosen == nil
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting || m.selected != nil {
		return ""
	}
	return "\n" + m.p.View() + "\n"
}

// PickItem runs an interactive list picker and returns the selected item's Value.
// Returns ("", nil) if the user cancels. Returns an error only on TUI failure.
func PickItem(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("no items to pick from")
	}

	m := pickerModel{p: NewPicker(title, items, "")}
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}

	fm := final.(pickerModel)
	if fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}
