package collector

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal/config"
	"github.com/sanwatch/rdfmon/internal/server"
)

const defaultServerAddr = ":8084"

func newWatchCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously collects replication status on the configured interval.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rdfmon, err := config.NewRDFMonFromFile(configPath)
			if err != nil {
				return err
			}

			logger, err := config.NewLogger(rdfmon.Global.Logger.Level)
			if err != nil {
				return err
			}
			defer logger.Sync()
			l := logger.Named("rdfmon.collector.watch")
			l.Info("starting collector!")

			c, err := config.InitializeCollector(ctx, rdfmon, l)
			if err != nil {
				return err
			}
			defer c.Close(context.Background())

			s := server.NewServer(l)
			s.RegisterCollector(c)

			addr := rdfmon.Collector.Server.Addr
			if addr == "" {
				addr = defaultServerAddr
			}

			go func() {
				if err := s.Start(ctx, addr); err != nil {
					l.Error("admin server error", zap.Error(err))
				}
			}()

			// Watch blocks until the context is canceled or the startup
			// inventory fails.
			if err := c.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			l.Info("collector stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.MarkFlagRequired("config")

	return cmd
}
