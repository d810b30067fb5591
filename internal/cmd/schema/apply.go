package schema

import (
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal/integrations/postgres"
)

func newApplyCommand() *cobra.Command {
	var connStr string
	var table string

	var cmd = &cobra.Command{
		Use:   "apply",
		Short: "Creates the status table and its indexes if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("schema.apply")

			conn, err := pgx.Connect(ctx, connStr)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			if _, err := conn.Exec(ctx, postgres.CreateTableDDL(table)); err != nil {
				return err
			}
			for _, ddl := range postgres.CreateIndexDDLs(table) {
				if _, err := conn.Exec(ctx, ddl); err != nil {
					return err
				}
			}

			l.Info("status table ready", zap.String("table", table))
			return nil
		},
	}

	cmd.Flags().StringVarP(&connStr, "connection-string", "d", "", "Postgres connection string")
	cmd.Flags().StringVarP(&table, "table", "t", postgres.DefaultTable, "Table to create")
	cmd.MarkFlagRequired("connection-string")

	return cmd
}
