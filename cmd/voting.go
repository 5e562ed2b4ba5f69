package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/bnbpanel/internal/contract"
	"github.com/Mohsinsiddi/bnbpanel/internal/ui"
	"github.com/Mohsinsiddi/bnbpanel/internal/validate"
	"github.com/Mohsinsiddi/bnbpanel/internal/voting"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var votingCmd = &cobra.Command{
	Use:   "voting",
	Short: "Candidate voting panel (BSC Testnet)",
	Long: `Open the voting panel, or run one action from the command line.

Examples:
  bnbpanel voting
  bnbpanel voting status
  bnbpanel voting vote 1
  bnbpanel voting has-voted 0xabc…`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPanel(contract.VotingID, func(m *mount) tea.Model { return ui.NewVoting(m.deps()) })
	},
}

var votingStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show candidates, tallies and the leader",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.VotingID, func(ctx context.Context, m *mount) error {
			v, err := read(ctx, m, "ballot", voting.Project)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			header(out, m)
			fmt.Fprint(out, ui.VotingSummary(v, -1))
			return nil
		})
	},
}

var votingVoteCmd = &cobra.Command{
	Use:   "vote <candidate-index>",
	Short: "Cast your vote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.VotingID, func(ctx context.Context, m *mount) error {
			return submit(ctx, m, cmd.OutOrStdout(), voting.Vote(args[0]))
		})
	},
}

var votingHasVotedCmd = &cobra.Command{
	Use:   "has-voted [address]",
	Short: "Check whether an address already voted (default: your wallet)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(contract.VotingID, func(ctx context.Context, m *mount) error {
			who, err := lookupAddress(ctx, m, args)
			if err != nil {
				return err
			}
			voted, err := lookup(ctx, m, func(ctx context.Context, r contract.Caller) (bool, error) {
				return voting.New(r).HasVoted(ctx, who)
			})
			if err != nil {
				return err
			}
			answer := ui.Warn("has not voted")
			if voted {
				answer = ui.Success("has voted")
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Addr(who.Hex())+" "+answer)
			return nil
		})
	},
}

var votingCandidateCmd = &cobra.Command{
	Use:   "candidate <index>",
	Short: "Look up one candidate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := validate.CandidateIndex(args[0])
		if err != nil {
			return err
		}
		return withPanel(contract.VotingID, func(ctx context.Context, m *mount) error {
			c, err := lookup(ctx, m, func(ctx context.Context, r contract.Caller) (voting.Candidate, error) {
				return voting.New(r).Candidate(ctx, idx)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Candidate #"+idx.String(), [][2]string{
				{"Name", ui.Val(c.Name)},
				{"Votes", ui.Val(c.VoteCount.String())},
			}))
			return nil
		})
	},
}

func init() {
	votingCmd.AddCommand(
		votingStatusCmd,
		votingVoteCmd,
		actionCmd(contract.VotingID, "start", "Open voting (owner only)", voting.Start),
		actionCmd(contract.VotingID, "end", "Close voting (owner only)", voting.End),
		votingHasVotedCmd,
		votingCandidateCmd,
	)
}
