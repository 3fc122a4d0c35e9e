package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kilianp07/smartgrid/api/runs"
	"github.com/kilianp07/smartgrid/core/runlog"
	"github.com/kilianp07/smartgrid/infra/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the run log over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.API.Addr = serveAddr
		}
		store, err := runlog.Open(cfg.Logging.StoreOptions())
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		var g prometheus.Gatherer
		if cfg.API.Metrics {
			g = prometheus.DefaultGatherer
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runs.Serve(ctx, cfg.API.Addr, runs.NewMux(store, cfg.API.Token, g), logger.New("api"))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides api.addr)")
	rootCmd.AddCommand(serveCmd)
}
