package cli

import (
	"github.com/spf13/cobra"
	"github.com/user/atmos-energy/internal/adapter/atmos"
	"github.com/user/atmos-energy/internal/config"
	"github.com/user/atmos-energy/internal/usage"
	"go.uber.org/zap"
)

func runUsage(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()
	cmd.SilenceUsage = true

	readings, err := retrieve(cmd, cfg, newClient(cfg, logger))
	if err != nil {
		logger.Error("error retrieving usage data", zap.Error(err))
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	switch {
	case cfg.Output != "":
		if err := WriteOutput(cfg.Output, readings); err != nil {
			return err
		}
		logger.Debug("data written", zap.String("path", cfg.Output), zap.Int("readings", len(readings)))
		return nil
	case jsonOutput:
		return PrintJSON(cmd.OutOrStdout(), readings)
	default:
		return PrintTable(cmd.OutOrStdout(), readings)
	}
}

func newClient(cfg *config.Config, logger *zap.Logger, opts ...atmos.Option) *atmos.Client {
	base := []atmos.Option{
		atmos.WithBaseURL(cfg.Settings.BaseURL),
		atmos.WithTimeout(cfg.Settings.Timeout),
		atmos.WithLogger(logger),
	}
	return atmos.NewClient(append(base, opts...)...)
}

func retrieve(cmd *cobra.Command, cfg *config.Config, client *atmos.Client) ([]usage.Reading, error) {
	ctx := cmd.Context()

	var readings []usage.Reading
	err := client.WithSession(ctx, cfg.Credentials(), func(s *atmos.Session) error {
		var err error
		if cfg.Months == 1 {
			readings, err = client.Single(ctx, s)
		} else {
			readings, err = client.History(ctx, s, cfg.Months)
		}
		return err
	})
	return readings, err
}
