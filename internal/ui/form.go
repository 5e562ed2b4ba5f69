package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Field is one labelled text input.
type Field struct {
	Label string
	Value string
}

// Form is a small stack of text inputs edited in place. Enter on the last
// field submits; Esc cancels.
type Form struct {
	Title  string
	Fields []Field
	focus  int
}

// NewForm builds a form from label/default pairs.
func NewForm(title string, pairs ...[2]string) *Form {
	f := &Form{Title: title}
	for _, p := range pairs {
		f.Fields = append(f.Fields, Field{Label: p[0], Value: p[1]})
	}
	return f
}

// Values returns the field values in order.
func (f *Form) Values() []string {
	out := make([]string, len(f.Fields))
	for i, fl := range f.Fields {
		out[i] = fl.Value
	}
	return out
}

// Value returns the first field, the common single-input case.
func (f *Form) Value() string {
	if len(f.Fields) == 0 {
		return ""
	}
	return f.Fields[0].Value
}

type formResult int

const (
	formEditing formResult = iota
	formSubmitted
	formCancelled
)

// Update applies one key and reports whether the form was submitted or
// cancelled.
func (f *Form) Update(k tea.KeyMsg) formResult {
	switch k.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		return formCancelled
	case tea.KeyEnter:
		if f.focus >= len(f.Fields)-1 {
			return formSubmitted
		}
		f.focus++
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % len(f.Fields)
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + len(f.Fields) - 1) % len(f.Fields)
	case tea.KeyBackspace:
		v := []rune(f.Fields[f.focus].Value)
		if len(v) > 0 {
			f.Fields[f.focus].Value = string(v[:len(v)-1])
		}
	case tea.KeyCtrlU:
		f.Fields[f.focus].Value = ""
	case tea.KeySpace:
		f.Fields[f.focus].Value += " "
	case tea.KeyRunes:
		// Pasted addresses sometimes arrive wrapped in brackets.
		f.Fields[f.focus].Value += strings.Trim(string(k.Runes), "[]")
	}
	return formEditing
}

// View renders the form with a cursor on the focused field.
func (f *Form) View() string {
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(f.Title) + "\n")
	for i, fl := range f.Fields {
		label := StyleMeta.Render(padRight(fl.Label+":", 14))
		val := fl.Value
		if i == f.focus {
			sb.WriteString("▸ " + label + " " + StyleAddress.Render(val) + "█\n")
		} else {
			sb.WriteString("  " + label + " " + StyleValue.Render(val) + "\n")
		}
	}
	hint := "[ Enter ] submit   [ Esc ] cancel"
	if len(f.Fields) > 1 {
		hint = "[ Tab ] next field   " + hint
	}
	sb.WriteString(StyleMeta.Render(hint))
	return sb.String()
}

func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
