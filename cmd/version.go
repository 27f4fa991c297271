package cmd

import (
	"fmt"

	"github.com/smazurov/onair/internal/version"
	"github.com/spf13/cobra"
)

// CreateVersionCmd prints build information.
func CreateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get())
		},
	}
}
