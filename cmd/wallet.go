package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/bnbpanel/internal/ui"
	"github.com/Mohsinsiddi/bnbpanel/internal/wallet"
	"github.com/spf13/cobra"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the wallets the local provider signs with",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a signing wallet with --key, or a watch-only address.

The private key is stored in the OS keychain (or an encrypted file in the
config directory on headless Linux); wallets.json only keeps a reference.
A watch-only wallet can read your tickets and contributions but cannot send.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag != "" {
			if err := mgr.AddWithKey(name, walletKeyFlag); err != nil {
				return err
			}
			w, _ := mgr.Get(name)
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
		} else {
			if len(args) < 2 {
				return fmt.Errorf("address required for a watch-only wallet\n  Usage: bnbpanel wallet add <name> <address>\n  Or for signing: bnbpanel wallet add <name> --key <private-key>")
			}
			if err := mgr.AddWatchOnly(name, args[1]); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(args[1]))))
		}
		fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: bnbpanel wallet use %s", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets := newWalletManager().List()
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: bnbpanel wallet add main --key <hex>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
		})
		for i, w := range wallets {
			t.AddRow(ui.Row{w.Name, w.Address, walletTypeLabel(w.Type)})
			if w.IsDefault {
				t.Mark(i)
			}
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured · ★ default", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet (pick from a list when no name is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			var items []ui.PickerItem
			for _, w := range mgr.List() {
				items = append(items, ui.PickerItem{
					Label:    w.Name,
					SubLabel: ui.TruncateAddr(w.Address) + " · " + walletTypeLabel(w.Type),
					Value:    w.Name,
				})
			}
			picked, err := ui.PickItem("Default wallet", items)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			name = picked
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

func walletTypeLabel(t string) string {
	if t == wallet.TypeSigning {
		return "signing"
	}
	return "watch-only"
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key for a signing wallet")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}
