package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/bnbpanel/internal/config"
	"github.com/Mohsinsiddi/bnbpanel/internal/logging"
	"github.com/Mohsinsiddi/bnbpanel/internal/metrics"
	"github.com/Mohsinsiddi/bnbpanel/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/bnbpanel/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir       string
	cfg          *config.Config
	verbose      bool
	networkFlag  string
	addressFlag  string
	walletFlag   string
	providerFlag string
	providerURL  string
	metricsAddr  string

	log         = zap.NewNop()
	recorder    = metrics.New()
	stopMetrics context.CancelFunc
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "bnbpanel",
	Short: "Terminal panels for BNB Chain auction, lottery, voting and crowdfunding contracts",
	Long: `bnbpanel — interactive panels for four BNB Chain contracts.

  Run a panel with no subcommand to open it full screen, or use the
  subcommands for one-shot reads and writes from scripts.

Auction, lottery and voting are pinned to BNB Smart Chain Testnet.
Crowdfunding follows --network (default: the configured network).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		dir, err := config.ResolveDir(cfgDir)
		if err != nil {
			return err
		}
		cfg, err = config.Load(dir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, err = logging.New(logging.Options{Dir: cfg.Dir(), Level: cfg.LogLevel, Verbose: verbose})
		if err != nil {
			return err
		}
		log.Debug("config loaded", zap.String("dir", cfg.Dir()), zap.String("provider", cfg.Provider))

		if cfg.MetricsAddr != "" {
			var ctx context.Context
			ctx, stopMetrics = context.WithCancel(context.Background())
			go func() {
				if err := recorder.Serve(ctx, cfg.MetricsAddr, log); err != nil {
					log.Error("metrics server stopped", zap.Error(err))
				}
			}()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stopMetrics != nil {
			stopMetrics()
		}
		_ = log.Sync()
	},
}

// applyFlags lets explicit flags win over the file and environment.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("provider") {
		c.Provider = providerFlag
	}
	if flags.Changed("provider-url") {
		c.ProviderURL = providerURL
	}
	if flags.Changed("metrics-addr") {
		c.MetricsAddr = metricsAddr
	}
	if flags.Changed("wallet") {
		c.DefaultWallet = walletFlag
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgDir, "config", "", "config directory (default: $BNBPANEL_CONFIG_DIR or ~/.bnbpanel)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "also write logs to stderr")
	pf.StringVarP(&networkFlag, "network", "n", "", "network for the crowdfunding panel (testnet, mainnet, opbnbTestnet, opbnbMainnet)")
	pf.StringVar(&addressFlag, "address", "", "contract address override")
	pf.StringVarP(&walletFlag, "wallet", "w", "", "wallet name (default: the default wallet)")
	pf.StringVar(&providerFlag, "provider", "", "wallet provider: local, remote or none")
	pf.StringVar(&providerURL, "provider-url", "", "remote wallet JSON-RPC endpoint")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	rootCmd.AddCommand(
		initCmd,
		networkCmd,
		walletCmd,
		abiCmd,
		auctionCmd,
		lotteryCmd,
		votingCmd,
		crowdfundCmd,
	)
}
