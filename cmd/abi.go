package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/ui"
	"github.com/spf13/cobra"
)

var abiCmd = &cobra.Command{
	Use:   "abi <auction|lottery|voting|crowdfund> [selector]",
	Short: "List a contract's methods and selectors, or look one selector up",
	Long: `Print every method of a built-in contract ABI with its 4-byte selector.
With a selector argument, name the method it belongs to instead.

Examples:
  bnbpanel abi lottery
  bnbpanel abi auction 0x3ccfd60b`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{contract.AuctionID, contract.LotteryID, contract.VotingID, contract.CrowdfundID},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := contract.GetKind(args[0])
		if !ok {
			return fmt.Errorf("unknown contract %q (want auction, lottery, voting or crowdfund)", args[0])
		}

		if len(args) == 2 {
			sel, err := parseSelector(args[1])
			if err != nil {
				return err
			}
			name := kind.MethodByData(sel)
			if name == "" {
				name = ui.Meta("not in the " + kind.ID + " ABI")
			} else {
				name = ui.Val(name)
			}
			fmt.Println(ui.KeyValueBlock("Selector Lookup", [][2]string{
				{"Selector", "0x" + hex.EncodeToString(sel)},
				{"Method", name},
			}))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Selector", Width: 10},
			{Title: "Kind", Width: 8},
			{Title: "Signature", Width: 60},
		})
		for _, m := range kind.Methods() {
			t.AddRow(ui.Row{m.Selector, methodKind(m), m.Signature})
		}
		fmt.Println(ui.StyleTitle.Render(kind.Name) + "  " + ui.Meta(kind.Description))
		fmt.Println(t.Render())
		return nil
	},
}

// parseSelector accepts a 0x-prefixed or bare 4-byte hex selector.
func parseSelector(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 4 {
		return nil, fmt.Errorf("invalid selector %q: want 4 bytes of hex, e.g. 0x3ccfd60b", s)
	}
	return b, nil
}

func methodKind(m contract.MethodInfo) string {
	switch {
	case m.ReadOnly:
		return "view"
	case m.Payable:
		return "payable"
	default:
		return "write"
	}
}
