package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/bnbpanel/internal/auction"
	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/ui"
	"github.com/Mohsinsiddi/bnbpanel/internal/units"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var auctionCmd = &cobra.Command{
	Use:   "auction",
	Short: "English auction panel (BSC Testnet)",
	Long: `Open the English auction panel, or run one action from the command line.

Examples:
  bnbpanel auction                  # full-screen panel
  bnbpanel auction status
  bnbpanel auction bid 0.05
  bnbpanel auction pending 0xabc…`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPanel(contract.AuctionID, func(m *mount) tea.Model { return ui.NewAuction(m.deps()) })
	},
}

var auctionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the item, leader and time left",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.AuctionID, func(ctx context.Context, m *mount) error {
			v, err := read(ctx, m, "auction", auction.Project)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			header(out, m)
			fmt.Fprintln(out, ui.AuctionSummary(v, v.SecondsLeft, m.account(ctx), m.session.Network().Currency.Symbol))
			return nil
		})
	},
}

var auctionBidCmd = &cobra.Command{
	Use:   "bid <amount>",
	Short: "Place a bid in BNB",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.AuctionID, func(ctx context.Context, m *mount) error {
			v, err := read(ctx, m, "auction", auction.Project)
			if err != nil {
				return err
			}
			return submit(ctx, m, cmd.OutOrStdout(), auction.PlaceBid(args[0], v, v.SecondsLeft))
		})
	},
}

var auctionPendingCmd = &cobra.Command{
	Use:   "pending [address]",
	Short: "Show refundable pending returns (default: your wallet)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.AuctionID, func(ctx context.Context, m *mount) error {
			who, err := lookupAddress(ctx, m, args)
			if err != nil {
				return err
			}
			amt, err := lookup(ctx, m, func(ctx context.Context, r contract.Caller) (*big.Int, error) {
				return auction.New(r).PendingReturns(ctx, who)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Pending returns", [][2]string{
				{"Address", ui.Addr(who.Hex())},
				{"Amount", ui.Amount(units.FormatEther(amt), m.session.Network().Currency.Symbol)},
			}))
			return nil
		})
	},
}

func init() {
	auctionCmd.AddCommand(
		auctionStatusCmd,
		auctionBidCmd,
		actionCmd(contract.AuctionID, "withdraw", "Withdraw your outbid funds", auction.Withdraw),
		actionCmd(contract.AuctionID, "end-early", "End the auction now (owner only)", auction.EndEarly),
		actionCmd(contract.AuctionID, "withdraw-proceeds", "Collect the winning bid (owner only)", auction.WithdrawProceeds),
		auctionPendingCmd,
	)
}

// actionCmd is a subcommand that sends one argument-free transaction.
func actionCmd(kindID, use, short string, build func() panel.Builder) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(kindID, func(ctx context.Context, m *mount) error {
				return submit(ctx, m, cmd.OutOrStdout(), build())
			})
		},
	}
}
