// Package cmd implements the keelctl command tree.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/keelframework/keel/shell"
)

// NewRootCommand creates the root command for keelctl
func NewRootCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "keelctl",
		Short: "keelctl - run and inspect keel applications",
		Long: `keelctl runs a keel application assembled from the standard components
(status API, config watcher, scheduler) and provides tooling for working
with its configuration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				shell.SetDefault(shell.New(os.Stdout, os.Stderr, shell.ColorNever))
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colorized output")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
