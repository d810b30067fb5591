package collector

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal/config"
)

func newRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs a single collection pass over every replicated storage group.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rdfmon, err := config.NewRDFMonFromFile(configPath)
			if err != nil {
				return err
			}

			logger, err := config.NewLogger(rdfmon.Global.Logger.Level)
			if err != nil {
				return err
			}
			defer logger.Sync()
			l := logger.Named("rdfmon.collector.run")
			l.Info("starting collector!")

			c, err := config.InitializeCollector(ctx, rdfmon, l)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			storageGroups, err := c.Inventory(ctx)
			if err != nil {
				return err
			}

			l.Info("inventory complete",
				zap.String("symmetrix_id", c.SymmetrixID()),
				zap.Int("storage_groups", len(storageGroups)),
			)

			run, err := c.Collect(ctx, storageGroups)
			if err != nil {
				return err
			}

			l.Info("collection pass complete",
				zap.String("run_id", run.ID),
				zap.Int("records", len(run.Records())),
				zap.Int("failures", run.NumFailures()),
			)

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.MarkFlagRequired("config")

	return cmd
}
