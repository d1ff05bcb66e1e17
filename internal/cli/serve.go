package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/atmos-energy/internal/adapter/atmos"
	"github.com/user/atmos-energy/internal/api"
	"go.uber.org/zap"
)

func init() {
	serveCmd.Flags().IntP("port", "P", 0, "Port to listen on (default from settings.api_port)")
	serveCmd.Flags().StringP("host", "H", "localhost", "Host to listen on")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Serves usage readings over HTTP at /api/v1/usage?months=N, with Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, "json")
		if err != nil {
			return err
		}
		defer logger.Sync()
		cmd.SilenceUsage = true

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Settings.APIPort
		}
		host, _ := cmd.Flags().GetString("host")

		metrics := api.NewMetrics()
		client := newClient(cfg, logger, atmos.WithTransport(metrics.InstrumentTransport(http.DefaultTransport)))
		server := api.NewServer(client, cfg, metrics, logger, fmt.Sprintf("%s:%d", host, port))

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				logger.Warn("shutdown failed", zap.Error(err))
				return err
			}
			return nil
		}
	},
}
