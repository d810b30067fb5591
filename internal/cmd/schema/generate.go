package schema

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sanwatch/rdfmon/internal/config"
	"github.com/sanwatch/rdfmon/internal/integrations/postgres"
	"github.com/sanwatch/rdfmon/internal/parquet"
)

func newGenerateCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "generate",
		Short: "Generates a parquet schema config block from a create table statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, _ := zap.NewDevelopment()
			l := logger.Named("schema.generate")
			l.Info(
				"generating parquet schema",
				zap.String("db", viper.GetString("db")),
			)

			switch viper.GetString("db") {
			case "postgres":
				query := viper.GetString("query")
				if query == "" {
					query = postgres.CreateTableDDL(postgres.DefaultTable)
				}

				s, err := parquet.ParseCreateTable(query)
				if err != nil {
					return err
				}

				cfg := config.SchemaToConfigFields(s)
				bs, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}

				fmt.Println(string(bs))
			default:
				return fmt.Errorf("unsupported database: %q", viper.GetString("db"))
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringP("db", "", "postgres", "The database the create table statement is for")
	cmd.PersistentFlags().StringP("query", "q", "", "The create table statement to parse; defaults to the built-in status table DDL")
	viper.BindPFlag("db", cmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("query", cmd.PersistentFlags().Lookup("query"))
	viper.AutomaticEnv()
	viper.SetEnvPrefix("RDFMON")
	return cmd
}
