package collector

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "collector",
		Short: "Manages the collection of replication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("welcome to rdfmon collector!")
			return nil
		},
	}
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newWatchCommand())
	return cmd
}
