package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/crowdfund"
	"github.com/Mohsinsiddi/bnbpanel/internal/panel"
	"github.com/Mohsinsiddi/bnbpanel/internal/ui"
	"github.com/Mohsinsiddi/bnbpanel/internal/units"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"k8s.io/utils/clock"
)

var (
	campaignFlag uint64
	campaignForm = crowdfund.NewForm()
)

var crowdfundCmd = &cobra.Command{
	Use:   "crowdfund",
	Short: "Crowdfunding campaigns panel (any network with --network)",
	Long: `Open the crowdfunding panel, or run one action from the command line.

--campaign picks a campaign by id; without it the newest campaign is used.
This is the only panel that follows --network.

Examples:
  bnbpanel crowdfund
  bnbpanel crowdfund --network opbnbTestnet status
  bnbpanel crowdfund fund 0.05 --campaign 3
  bnbpanel crowdfund create --title "Community garden" --goal 2 --days 14`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPanel(contract.CrowdfundID, func(m *mount) tea.Model {
			return ui.NewCrowdfund(m.deps(), clock.RealClock{})
		})
	},
}

// campaignView reads the campaign named by --campaign.
func campaignView(ctx context.Context, m *mount) (crowdfund.View, error) {
	p := crowdfund.Projector{Selected: campaignFlag, User: m.account(ctx)}
	return read(ctx, m, "campaign", p.Project)
}

var crowdfundStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a campaign's progress and deadline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.CrowdfundID, func(ctx context.Context, m *mount) error {
			v, err := campaignView(ctx, m)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			header(out, m)
			if v.Campaign == nil {
				fmt.Fprintln(out, ui.Info("No campaigns yet."))
				fmt.Fprintln(out, ui.Hint("Create one with: bnbpanel crowdfund create --title …"))
				return nil
			}
			fmt.Fprintln(out, ui.CrowdfundSummary(v, m.account(ctx), m.session.Now(), m.session.Network().Currency.Symbol))
			return nil
		})
	},
}

var crowdfundFundCmd = &cobra.Command{
	Use:   "fund [amount]",
	Short: "Contribute to a campaign (default 0.01)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount := crowdfund.DefaultFundAmount
		if len(args) == 1 {
			amount = args[0]
		}
		return campaignAction(cmd, func(v crowdfund.View) panel.Builder { return crowdfund.Fund(v, amount) })
	},
}

var crowdfundCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Start a new campaign",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.CrowdfundID, func(ctx context.Context, m *mount) error {
			return submit(ctx, m, cmd.OutOrStdout(), crowdfund.Create(campaignForm))
		})
	},
}

// campaignAction reads the selected campaign and sends one write for it.
func campaignAction(cmd *cobra.Command, build func(crowdfund.View) panel.Builder) error {
	return withPanel(contract.CrowdfundID, func(ctx context.Context, m *mount) error {
		v, err := campaignView(ctx, m)
		if err != nil {
			return err
		}
		return submit(ctx, m, cmd.OutOrStdout(), build(v))
	})
}

func campaignActionCmd(use, short string, build func(crowdfund.View) panel.Builder) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return campaignAction(cmd, build)
		},
	}
}

var crowdfundContributionCmd = &cobra.Command{
	Use:   "contribution [address]",
	Short: "Show what an address gave to a campaign (default: your wallet)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.CrowdfundID, func(ctx context.Context, m *mount) error {
			who, err := lookupAddress(ctx, m, args)
			if err != nil {
				return err
			}
			var id uint64
			n, err := lookup(ctx, m, func(ctx context.Context, r contract.Caller) (*big.Int, error) {
				c := crowdfund.New(r)
				count, err := c.Count(ctx)
				if err != nil {
					return nil, err
				}
				if id = crowdfund.Clamp(campaignFlag, count); id == 0 {
					return nil, fmt.Errorf("no campaigns yet")
				}
				return c.Contribution(ctx, id, who)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(fmt.Sprintf("Contribution to campaign #%d", id), [][2]string{
				{"Address", ui.Addr(who.Hex())},
				{"Amount", ui.Amount(units.FormatEther(n), m.session.Network().Currency.Symbol)},
			}))
			return nil
		})
	},
}

func init() {
	crowdfundCmd.PersistentFlags().Uint64Var(&campaignFlag, "campaign", 0, "campaign id (default: newest)")

	f := crowdfundCreateCmd.Flags()
	f.StringVar(&campaignForm.Title, "title", "", "campaign title (required)")
	f.StringVar(&campaignForm.Description, "description", "", "what the money is for")
	f.StringVar(&campaignForm.ImageURL, "image", "", "image URL")
	f.StringVar(&campaignForm.Goal, "goal", crowdfund.DefaultGoal, "goal in BNB")
	f.StringVar(&campaignForm.Days, "days", crowdfund.DefaultDays, "duration in days")

	crowdfundCmd.AddCommand(
		crowdfundStatusCmd,
		crowdfundFundCmd,
		crowdfundCreateCmd,
		campaignActionCmd("withdraw", "Withdraw a funded campaign (creator only)", crowdfund.Withdraw),
		campaignActionCmd("refund", "Claim a refund from a failed or cancelled campaign", crowdfund.Refund),
		campaignActionCmd("cancel", "Cancel an active campaign (creator only)", crowdfund.Cancel),
		crowdfundContributionCmd,
	)
}
