package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/atmos-energy/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default settings",
	Long:  `Writes the default settings and the given username. The password is never stored; use ATMOS_PASSWORD or --password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		cfg.Username, _ = cmd.Flags().GetString("username")
		if months, _ := cmd.Flags().GetInt("months"); months > 0 {
			cfg.Months = months
		}

		if err := config.Save(cfg, cfgFile); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Configuration written")
		return nil
	},
}

func init() {
	configInitCmd.Flags().Int("months", 1, "Default number of months to retrieve")
	configCmd.AddCommand(configInitCmd)
}
