package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/user/atmos-energy/internal/config"
	"github.com/user/atmos-energy/internal/logging"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "atmos-energy",
		Short: "Retrieve Atmos Energy usage data",
		Long: `Logs in to the Atmos Energy account center and downloads daily usage
for one or more billing periods.

Config file format (YAML):
  username: your_username
  password: your_password
  months: 3
  output: usage.csv

Example usage:
  atmos-energy --username john --password secret123
  atmos-energy --username john --password secret123 --months 6
  atmos-energy --config ~/.config/atmos-energy/config.yaml`,
		RunE: runUsage,
	}
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/atmos-energy/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringP("username", "u", "", "Atmos Energy account username")
	rootCmd.PersistentFlags().StringP("password", "p", "", "Atmos Energy account password")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.Flags().Int("months", 1, "Number of months to retrieve (1 for the current billing period only)")
	rootCmd.Flags().StringP("output", "o", "", "Write to a CSV file, or XLSX when the name ends in .xlsx (default: print to console)")
	rootCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

// setup loads the config file and lets explicitly set flags win over it.
func setup(cmd *cobra.Command, logEncoding string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("username") {
		cfg.Username, _ = flags.GetString("username")
	}
	if flags.Changed("password") {
		cfg.Password, _ = flags.GetString("password")
	}
	if f := flags.Lookup("months"); f != nil && f.Changed {
		cfg.Months, _ = flags.GetInt("months")
	}
	if f := flags.Lookup("output"); f != nil && f.Changed {
		cfg.Output, _ = flags.GetString("output")
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(verbose, logEncoding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if cfgFile != "" {
		logger.Debug("loaded configuration", zap.String("file", cfgFile))
	}

	return cfg, logger, nil
}
