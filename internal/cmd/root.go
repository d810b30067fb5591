package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sanwatch/rdfmon/internal/cmd/collector"
	"github.com/sanwatch/rdfmon/internal/cmd/fixtures"
	"github.com/sanwatch/rdfmon/internal/cmd/schema"
	"github.com/sanwatch/rdfmon/internal/cmd/status"
)

func NewRootCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "rdfmon",
		Short: "SRDF replication status collector for PowerMax and VMAX arrays",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Welcome to rdfmon!")
		},
	}

	cmd.AddCommand(collector.NewCommand())
	cmd.AddCommand(status.NewCommand())
	cmd.AddCommand(schema.NewCommand())
	cmd.AddCommand(fixtures.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
