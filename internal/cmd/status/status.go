package status

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sanwatch/rdfmon/internal/config"
	"github.com/sanwatch/rdfmon/internal/report"
	"github.com/sanwatch/rdfmon/pkg/unisphere"
)

// NewCommand prints the one-shot console view of an array: capacity, health
// and the state of every RDF group and replicated storage group.
func NewCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Prints capacity, health and replication status for the configured array",
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
			l := logger.Named("rdfmon.status")

			client, err := config.InitializeClient(rdfmon, l)
			if err != nil {
				return err
			}

			arrayID := rdfmon.Collector.Unisphere.ArrayID

			capacity, err := client.ArrayCapacity(ctx, arrayID)
			if err != nil {
				return hint(err)
			}
			report.PrintCapacity(os.Stdout, capacity)

			health, err := client.ArrayHealth(ctx, arrayID)
			if err != nil {
				return hint(err)
			}
			report.PrintHealth(os.Stdout, health)

			groups, err := client.RDFGroups(ctx, arrayID)
			if err != nil {
				return hint(err)
			}
			if err := report.PrintReplicationGroups(ctx, os.Stdout, client, arrayID, groups); err != nil {
				return hint(err)
			}

			storageGroups, err := client.ReplicatedStorageGroups(ctx, arrayID)
			if err != nil {
				return hint(err)
			}
			report.PrintReplicatedStorageGroups(os.Stdout, storageGroups)

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.MarkFlagRequired("config")

	return cmd
}

// hint appends operator guidance for the two failures with an obvious fix.
func hint(err error) error {
	switch {
	case unisphere.IsUnauthorized(err):
		return fmt.Errorf("%w (authentication failed, check username and password)", err)
	case unisphere.IsNotFound(err):
		return fmt.Errorf("%w (resource not found, check the array id)", err)
	}
	return err
}
