package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/bnbpanel/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Pick the default network and wallet provider, then save them to the config directory.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		result, err := ui.RunWizard(cfg.Registry(), cfg.ProviderURL)
		if err != nil {
			return err
		}
		if result.Cancelled {
			fmt.Println(ui.Warn("Setup cancelled, nothing saved."))
			return nil
		}

		if result.DefaultNetwork != "" {
			cfg.DefaultNetwork = result.DefaultNetwork
		}
		if result.Provider != "" {
			cfg.Provider = result.Provider
		}
		if result.ProviderURL != "" {
			cfg.ProviderURL = result.ProviderURL
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Println(ui.Success("bnbpanel configured! Run `bnbpanel --help` to explore commands."))
		if cfg.Provider == "local" && len(newWalletManager().List()) == 0 {
			fmt.Println(ui.Hint("Add a signing wallet with: bnbpanel wallet add main --key <hex>"))
		}
		return nil
	},
}
