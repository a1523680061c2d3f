package cmd

import (
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var configFile string
	var assignments []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a keel application with the standard components",
		Long: `Run boots an application from the given configuration and blocks until
SIGINT or SIGTERM. Components are mounted according to the config: the
status API, the config file watcher, and the heartbeat scheduler.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(configFile, assignments)
			if err != nil {
				return err
			}
			return app.Run()
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "configuration file (.toml, .yaml, .yml, or .json)")
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "override a configuration field, e.g. --set app.name=worker")

	return cmd
}
