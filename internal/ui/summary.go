package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/auction"
	"github.com/Mohsinsiddi/bnbpanel/internal/crowdfund"
	"github.com/Mohsinsiddi/bnbpanel/internal/lottery"
	"github.com/Mohsinsiddi/bnbpanel/internal/units"
	"github.com/Mohsinsiddi/bnbpanel/internal/voting"
	"github.com/ethereum/go-ethereum/common"
)

// Summaries render a view for both the full-screen panels and the one-shot
// status commands. remaining is the local countdown in seconds; acct is the
// connected account or nil.

// AuctionSummary renders the auction state.
func AuctionSummary(v auction.View, remaining int64, acct *common.Address, sym string) string {
	leader := Meta("No bids yet")
	if v.HasBids() {
		leader = Addr(v.HighestBidder.Hex())
	}
	state := StyleSuccess.Render("Active")
	left := Val(units.FormatTimeLeft(remaining))
	if v.Ended || remaining == 0 {
		state = StyleError.Render("Ended")
		left = StyleError.Render("Ended")
	}
	owner := Addr(v.Owner.Hex())
	if v.IsOwner(acct) {
		owner += " " + Hint("you")
	}
	return KeyValueBlock(v.ItemName, [][2]string{
		{"Status", state},
		{"Time left", left},
		{"Highest bid", Amount(v.HighestBidText(), sym)},
		{"Highest bidder", leader},
		{"Owner", owner},
	})
}

// LotterySummary renders one round.
func LotterySummary(v lottery.View, remaining int64, acct *common.Address, sym string) string {
	if v.Round == nil {
		return KeyValueBlock("No rounds yet", [][2]string{{"Owner", Addr(v.Owner.Hex())}})
	}
	r := v.Round

	state := StyleSuccess.Render("Open")
	switch {
	case v.Drawn():
		state = StyleChain.Render("Drawn")
	case !r.IsOpen:
		state = StyleError.Render("Closed")
	case remaining == 0:
		state = StyleWarning.Render("Awaiting draw")
	}
	left := Val(units.FormatTimeLeft(remaining))
	if v.Drawn() || !r.IsOpen {
		left = Meta("—")
	}
	winner := Meta("Not drawn")
	if v.Drawn() {
		winner = Addr(r.Winner.Hex())
		if acct != nil && *acct == r.Winner {
			winner += " " + Hint("you")
		}
	}
	mine := Meta("—")
	if v.MyTickets != nil {
		mine = Val(v.MyTickets.String())
	}
	title := fmt.Sprintf("Round #%d of %d", v.RoundID, v.RoundCount)
	return KeyValueBlock(title, [][2]string{
		{"Status", state},
		{"Time left", left},
		{"Ticket price", Amount(units.FormatEther(r.TicketPrice), sym)},
		{"Prize pool", Amount(units.FormatEther(r.PrizePool), sym)},
		{"Tickets sold", Val(r.TotalTickets.String())},
		{"Your tickets", mine},
		{"Winner", winner},
	})
}

// VotingSummary renders the ballot with the row at cursor highlighted.
// Pass -1 for no selection.
func VotingSummary(v voting.View, cursor int) string {
	state := StyleError.Render("Closed")
	if v.VotingOpen {
		state = StyleSuccess.Render("Open")
	}
	hasLeader := v.Winner.Votes != nil && v.Winner.Votes.Sign() > 0
	leader := Meta("No votes yet")
	if hasLeader {
		leader = Val(v.Winner.Name) + Meta(fmt.Sprintf(" (%s votes)", v.Winner.Votes))
	}
	summary := KeyValueBlock("", [][2]string{
		{"Voting", state},
		{"Total votes", Val(v.TotalVotes.String())},
		{"Leading", leader},
		{"Owner", Addr(v.Owner.Hex())},
	})

	tbl := NewTable([]Column{
		{Title: "#", Width: 3, Right: true},
		{Title: "Candidate", Width: 20},
		{Title: "Votes", Width: 7, Right: true},
	})
	for i, c := range v.Candidates {
		tbl.AddRow(Row{strconv.Itoa(i), c.Name, c.VoteCount.String()})
		if hasLeader && c.Name == v.Winner.Name {
			tbl.Mark(i)
		}
	}
	tbl.SelIdx = cursor
	out := tbl.Render()
	// Bars carry their own styling, so they are drawn after the table.
	for i := range v.Candidates {
		out += fmt.Sprintf("  %-3d %s\n", i, ProgressBar(v.Share(i), 20))
	}
	return summary + "\n" + out
}

// CrowdfundSummary renders the selected campaign. v.Campaign must be set.
func CrowdfundSummary(v crowdfund.View, acct *common.Address, now time.Time, sym string) string {
	c := v.Campaign

	state := StyleSuccess.Render("Active")
	switch {
	case c.IsCancelled:
		state = StyleError.Render("Cancelled")
	case c.FundsWithdrawn:
		state = StyleChain.Render("Funds withdrawn")
	case c.GoalReached:
		state = StyleSuccess.Render("Goal reached")
	case c.Expired(now):
		state = StyleError.Render("Expired")
	}
	creator := Addr(c.Creator.Hex())
	if v.IsCreator(acct) {
		creator += " " + Hint("you")
	}
	mine := Meta("—")
	if v.MyContribution != nil {
		mine = Amount(units.FormatEther(v.MyContribution), sym)
	}
	pairs := [][2]string{
		{"Status", state},
		{"Raised", Amount(units.FormatEther(c.RaisedAmount), sym) + Meta(" of ") + Amount(units.FormatEther(c.GoalAmount), sym)},
		{"Progress", ProgressBar(v.Progress(), 24)},
		{"Deadline", Val(v.TimeLeft(now))},
		{"Backers", Val(c.BackerCount.String())},
		{"Your contribution", mine},
		{"Creator", creator},
	}
	if c.Description != "" {
		pairs = append([][2]string{{"About", c.Description}}, pairs...)
	}
	if c.ImageURL != "" {
		pairs = append(pairs, [2]string{"Image", Meta(c.ImageURL)})
	}
	return KeyValueBlock(fmt.Sprintf("#%d of %d · %s", v.CampaignID, v.Count, c.Title), pairs)
}
