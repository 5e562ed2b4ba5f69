package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/bnbpanel/internal/network"
	"github.com/Mohsinsiddi/bnbpanel/internal/rpc"
	"github.com/Mohsinsiddi/bnbpanel/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect supported networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the four BNB networks and their deployed contracts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := cfg.Registry()
		t := ui.NewTable([]ui.Column{
			{Title: "Key", Width: 14},
			{Title: "Name", Width: 24},
			{Title: "Chain ID", Width: 9, Right: true},
			{Title: "Currency", Width: 8},
			{Title: "Enabled", Width: 8},
			{Title: "Contracts", Width: 36},
		})
		for i, d := range reg.All() {
			enabled := "no"
			if d.Enabled {
				enabled = "yes"
			}
			t.AddRow(ui.Row{
				string(d.Key),
				d.Name,
				fmt.Sprintf("%d", d.ChainID),
				d.Currency.Symbol,
				enabled,
				featureList(&d),
			})
			if string(d.Key) == cfg.DefaultNetwork {
				t.Mark(i)
			}
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta("★ default network"))
		return nil
	},
}

var networkShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Show one network (default: the configured network)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := cfg.DefaultNetwork
		if len(args) == 1 {
			key = args[0]
		}
		d, err := cfg.Registry().Get(key)
		if err != nil {
			return fmt.Errorf("%w: %q (want one of testnet, mainnet, opbnbTestnet, opbnbMainnet)", err, key)
		}
		pairs := [][2]string{
			{"Key", ui.Val(string(d.Key))},
			{"Chain ID", ui.Val(fmt.Sprintf("%d (%s)", d.ChainID, d.ChainIDHex()))},
			{"RPC", d.RPCURL},
			{"Explorer", d.ExplorerURL},
			{"Currency", ui.Val(d.Currency.Symbol)},
			{"Enabled", ui.Val(fmt.Sprintf("%t", d.Enabled))},
		}
		for _, f := range network.Features {
			addr := ui.Meta("not deployed")
			if a := d.ContractAddress(f); a != nil {
				addr = ui.Addr(a.Hex())
			}
			pairs = append(pairs, [2]string{string(f), addr})
		}
		fmt.Println(ui.KeyValueBlock(d.Name, pairs))
		return nil
	},
}

var networkPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check every network's RPC endpoint (latency, head block, chain id)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spin := ui.NewSpinner("Probing RPC endpoints…")
		spin.Start()
		probes := rpc.CheckAll(cmd.Context(), cfg.Registry().All())
		spin.StopWithMsg(ui.Meta(fmt.Sprintf("Probed %d endpoints", len(probes))))

		t := ui.NewTable([]ui.Column{
			{Title: "Key", Width: 14},
			{Title: "Latency", Width: 9, Right: true},
			{Title: "Block", Width: 12, Right: true},
			{Title: "Status", Width: 40},
		})
		for _, p := range probes {
			latency, block, status := "—", "—", "ok"
			if p.Latency > 0 {
				latency = p.Latency.Round(time.Millisecond).String()
			}
			if p.BlockNumber > 0 {
				block = fmt.Sprintf("%d", p.BlockNumber)
			}
			if !p.Healthy {
				status = p.Err.Error()
			}
			t.AddRow(ui.Row{string(p.Key), latency, block, status})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d of %d healthy", len(rpc.Healthy(probes)), len(probes))))
		return nil
	},
}

// featureList names the features deployed on d.
func featureList(d *network.Descriptor) string {
	var out []string
	for _, f := range network.Features {
		if d.FeatureEnabled(f) {
			out = append(out, string(f))
		}
	}
	if len(out) == 0 {
		return "—"
	}
	return strings.Join(out, ", ")
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkShowCmd, networkPingCmd)
}
