package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	out := KeyValueBlock("Auction", [][2]string{{"Item", "Vintage guitar"}, {"Highest bid", "0.5 tBNB"}})
	assert.Contains(t, out, "Auction")
	assert.Contains(t, out, "Item:")
	assert.Contains(t, out, "Vintage guitar")
	assert.Contains(t, out, "0.5 tBNB")
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	out := KeyValueBlock("", [][2]string{{"First", "1"}, {"Second", "2"}, {"Third", "3"}})
	assert.Less(t, strings.Index(out, "First"), strings.Index(out, "Second"))
	assert.Less(t, strings.Index(out, "Second"), strings.Index(out, "Third"))
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	out := KeyValueBlock("x", nil)
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "╯")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestFit(t *testing.T) {
	tests := []struct {
		in    string
		width int
		right bool
		want  string
	}{
		{"ab", 4, false, "ab  "},
		{"ab", 4, true, "  ab"},
		{"abcd", 4, false, "abcd"},
		{"abcdef", 4, false, "abc…"},
		{"Ünïcode", 3, false, "Ün…"},
		{"x", 0, false, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fit(tt.in, tt.width, tt.right), "%q/%d", tt.in, tt.width)
	}
}

func TestTableRenderContainsHeadersAndRows(t *testing.T) {
	tbl := NewTable([]Column{{Title: "#", Width: 3}, {Title: "Candidate", Width: 12}, {Title: "Votes", Width: 6, Right: true}})
	tbl.AddRow(Row{"0", "Alice", "12"})
	tbl.AddRow(Row{"1", "Bob"})

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Candidate")
	assert.Contains(t, lines[1], "─")
	assert.Contains(t, lines[2], "Alice")
	assert.Contains(t, lines[2], "    12")
	assert.Contains(t, lines[3], "Bob")
}

func TestTableSelectedAndMarkedRows(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 8}})
	tbl.AddRow(Row{"Alice"})
	tbl.AddRow(Row{"Bob"})
	tbl.SelIdx = 1
	tbl.Mark(0)

	lines := strings.Split(tbl.Render(), "\n")
	assert.Contains(t, lines[2], "★")
	assert.NotContains(t, lines[3], "★")
	assert.Contains(t, lines[3], "▸")
}
