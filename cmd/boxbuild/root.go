package main

import (
	"github.com/spf13/cobra"

	"github.com/boxbuild/boxbuild/internal/plugin"
)

type rootFlags struct {
	verbose bool
}

func newRootCmd(registry *plugin.Registry) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "boxbuild",
		Short:         "boxbuild runs declarative build pipelines locally",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newRunCmd(flags, registry))
	cmd.AddCommand(newCheckCmd(flags))
	cmd.AddCommand(newWatchCmd(flags, registry))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
