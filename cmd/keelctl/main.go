package main

import (
	"os"

	"github.com/keelframework/keel/cmd/keelctl/cmd"
	"github.com/keelframework/keel/shell"
)

func main() {
	rootCmd := cmd.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		shell.Default().Error("%s", err)
		os.Exit(1)
	}
}
