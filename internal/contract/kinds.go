package contract

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi/*.json
var abiFS embed.FS

// Kind describes one of the panel contracts and its parsed ABI.
type Kind struct {
	ID          string          // machine key, e.g. "auction"
	Name        string          // human label
	Description string          // one-line summary shown by `bnbpanel abi`
	Feature     network.Feature // registry feature the address comes from
	ABI         abi.ABI
}

var kindRegistry = map[string]*Kind{}

// Kind IDs.
const (
	AuctionID   = "auction"
	LotteryID   = "lottery"
	VotingID    = "voting"
	CrowdfundID = "crowdfund"
)

func init() {
	register(AuctionID, "English Auction", "Single-item auction with refundable outbid bids", network.Auction)
	register(LotteryID, "Lottery", "Multi-round ticket lottery with owner-drawn winners", network.Lottery)
	register(VotingID, "Voting", "Fixed candidate list, one vote per address", network.Voting)
	register(CrowdfundID, "Crowdfunding", "Campaign factory with goal, deadline and refunds", network.CrowdFunding)
}

func register(id, name, desc string, f network.Feature) {
	raw, err := abiFS.ReadFile("abi/" + id + ".json")
	if err != nil {
		panic(fmt.Sprintf("contract: missing embedded ABI %s: %v", id, err))
	}
	parsed, err := abi.JSON(strings.NewReader(string(raw)))
	if err != nil {
		panic(fmt.Sprintf("contract: bad embedded ABI %s: %v", id, err))
	}
	kindRegistry[id] = &Kind{ID: id, Name: name, Description: desc, Feature: f, ABI: parsed}
}

// MustKind returns a registered kind and panics on unknown IDs.
func MustKind(id string) *Kind {
	k, ok := GetKind(id)
	if !ok {
		panic("contract: unknown kind " + id)
	}
	return k
}

// GetKind returns a kind by ID. ok is false if not found.
func GetKind(id string) (*Kind, bool) {
	k, ok := kindRegistry[strings.ToLower(id)]
	return k, ok
}

// AllKinds returns every registered kind sorted by ID.
func AllKinds() []*Kind {
	out := make([]*Kind, 0, len(kindRegistry))
	for _, k := range kindRegistry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
