package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/lottery"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"k8s.io/utils/clock"
)

var roundFlag uint64

var lotteryCmd = &cobra.Command{
	Use:   "lottery",
	Short: "Round-based lottery panel (BSC Testnet)",
	Long: `Open the lottery panel, or run one action from the command line.

--round picks a round by id; without it the latest round is used.

Examples:
  bnbpanel lottery
  bnbpanel lottery status --round 2
  bnbpanel lottery buy 3
  bnbpanel lottery create-round 0.01 3600`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPanel(contract.LotteryID, func(m *mount) tea.Model {
			return ui.NewLottery(m.deps(), clock.RealClock{})
		})
	},
}

// lotteryView reads the round named by --round.
func lotteryView(ctx context.Context, m *mount) (lottery.View, error) {
	p := lottery.Projector{Clock: clock.RealClock{}, Selected: roundFlag, User: m.account(ctx)}
	return read(ctx, m, "round", p.Project)
}

var lotteryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a round's price, pool and winner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.LotteryID, func(ctx context.Context, m *mount) error {
			v, err := lotteryView(ctx, m)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			header(out, m)
			fmt.Fprintln(out, ui.LotterySummary(v, v.SecondsLeft, m.account(ctx), m.session.Network().Currency.Symbol))
			return nil
		})
	},
}

var lotteryBuyCmd = &cobra.Command{
	Use:   "buy <quantity>",
	Short: "Buy tickets in a round",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.LotteryID, func(ctx context.Context, m *mount) error {
			v, err := lotteryView(ctx, m)
			if err != nil {
				return err
			}
			r, err := m.session.Reader()
			if err != nil {
				return err
			}
			return submit(ctx, m, cmd.OutOrStdout(), lottery.BuyTickets(r, v, args[0]))
		})
	},
}

var lotteryCreateCmd = &cobra.Command{
	Use:   "create-round <ticket-price> <duration-seconds>",
	Short: "Open a new round (owner only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.LotteryID, func(ctx context.Context, m *mount) error {
			return submit(ctx, m, cmd.OutOrStdout(), lottery.CreateRound(args[0], args[1]))
		})
	},
}

// roundActionCmd closes or draws the round named by --round.
func roundActionCmd(use, short string, build func(lottery.View) panel.Builder) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(contract.LotteryID, func(ctx context.Context, m *mount) error {
				v, err := lotteryView(ctx, m)
				if err != nil {
					return err
				}
				return submit(ctx, m, cmd.OutOrStdout(), build(v))
			})
		},
	}
}

var lotteryTicketsCmd = &cobra.Command{
	Use:   "tickets [address]",
	Short: "Show how many tickets an address holds (default: your wallet)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.LotteryID, func(ctx context.Context, m *mount) error {
			who, err := lookupAddress(ctx, m, args)
			if err != nil {
				return err
			}
			var round uint64
			n, err := lookup(ctx, m, func(ctx context.Context, r contract.Caller) (*big.Int, error) {
				c := lottery.New(r)
				count, err := c.RoundCount(ctx)
				if err != nil {
					return nil, err
				}
				if round = lottery.Clamp(roundFlag, count); round == 0 {
					return nil, errors.New("no lottery rounds yet")
				}
				return c.Tickets(ctx, round, who)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(fmt.Sprintf("Tickets in round #%d", round), [][2]string{
				{"Address", ui.Addr(who.Hex())},
				{"Tickets", ui.Val(n.String())},
			}))
			return nil
		})
	},
}

func init() {
	lotteryCmd.PersistentFlags().Uint64Var(&roundFlag, "round", 0, "round id (default: latest)")
	lotteryCmd.AddCommand(
		lotteryStatusCmd,
		lotteryBuyCmd,
		lotteryCreateCmd,
		roundActionCmd("close-round", "Stop ticket sales (owner only)", lottery.CloseRound),
		roundActionCmd("pick-winner", "Draw the winner (owner only)", lottery.PickWinner),
		lotteryTicketsCmd,
	)
}
