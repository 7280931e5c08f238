package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/boxbuild/boxbuild/internal/logger"
	"github.com/boxbuild/boxbuild/internal/plugin"
	"github.com/boxbuild/boxbuild/internal/watcher"
)

func newWatchCmd(root *rootFlags, registry *plugin.Registry) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run a pipeline and re-run it when the file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			// Watch mode re-runs indefinitely, so the full-screen TUI would
			// swallow the output of earlier runs.
			opts.NonInteractive = true

			if err := validateRunOptions(opts); err != nil {
				return err
			}

			return runWatch(opts, registry)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to pipeline file")
	cmd.Flags().StringVarP(&opts.WorkDir, "workspace", "w", "", "Workspace directory (defaults to a temporary directory)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Abort each run after this duration (0 disables)")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func runWatch(opts runOptions, registry *plugin.Registry) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := "info"
	if opts.Verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	if opts.WorkDir == "" {
		opts.WorkDir, err = os.MkdirTemp("", "boxbuild-*")
		if err != nil {
			return err
		}
	}

	runOnce := func() {
		if err := runCmdRunner(ctx, opts, registry); err != nil {
			log.WithFields(map[string]any{"path": opts.ConfigPath}).Error(err, "run failed")
		}
	}

	runOnce()

	w, err := watcher.New(log)
	if err != nil {
		return err
	}
	defer w.Close() //nolint:errcheck

	log.WithFields(map[string]any{"path": opts.ConfigPath}).Info("watching for changes")

	if err := w.Watch(ctx, opts.ConfigPath, runOnce); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
