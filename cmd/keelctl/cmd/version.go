package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelframework/keel"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the keel framework version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "keel v%s\n", keel.Version)
		},
	}
}
