package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boxbuild/boxbuild/internal/config"
)

type checkOptions struct {
	ConfigPath string
	Verbose    bool
}

func newCheckCmd(root *rootFlags) *cobra.Command {
	opts := checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a pipeline file without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose

			if err := validateConfigPath(opts.ConfigPath); err != nil {
				return err
			}

			pipeline, err := config.ParsePipeline(opts.ConfigPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (box %s, %d steps)\n", opts.ConfigPath, pipeline.Box, len(pipeline.Build.Steps))

			if opts.Verbose {
				for _, step := range pipeline.Build.Steps {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s (%s)\n", step.ID(), step.Kind)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to pipeline file")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
