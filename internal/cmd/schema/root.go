package schema

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "schema",
		Short: "Utilities to manage the status table and parquet schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("rdfmon schema utilities!")
			return nil
		},
	}

	cmd.AddCommand(newGenerateCommand())
	cmd.AddCommand(newApplyCommand())

	return cmd
}
