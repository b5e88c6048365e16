package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inkplay",
		Short:         "Play or inspect a compiled ink story from the command line.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(newPlayCmd())
	root.AddCommand(newDumpCmd())
	return root
}
