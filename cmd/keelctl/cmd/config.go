package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keelframework/keel"
	"github.com/keelframework/keel/shell"
)

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and scaffold configuration",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.AddCommand(NewConfigShowCommand())
	cmd.AddCommand(NewConfigInitCommand())

	return cmd
}

// NewConfigShowCommand creates the config show command. It renders the
// effective configuration after the file, environment, defaults, and --set
// overrides have been applied. Secret values print redacted.
func NewConfigShowCommand() *cobra.Command {
	var configFile string
	var assignments []string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, overrides := configSources(assignments)

			loaded, err := keel.LoadConfig(&Config{}, configFile, extra, overrides)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(loaded, "", "  ")
			if err != nil {
				return fmt.Errorf("render configuration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "configuration file (.toml, .yaml, .yml, or .json)")
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "override a configuration field, e.g. --set app.name=worker")

	return cmd
}

// NewConfigInitCommand creates the config init command, which writes a
// sample configuration with default values filled in.
func NewConfigInitCommand() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := keel.GenerateSampleConfig(&Config{}, format)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				fmt.Fprint(cmd.OutOrStdout(), string(sample))
				return nil
			}

			if err := os.WriteFile(output, sample, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			shell.Default().StatusOK("written", "%s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml, yaml, or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}
