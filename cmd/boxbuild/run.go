package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/engine"
	"github.com/boxbuild/boxbuild/internal/logger"
	"github.com/boxbuild/boxbuild/internal/model"
	"github.com/boxbuild/boxbuild/internal/plugin"
	"github.com/boxbuild/boxbuild/internal/report"
	"github.com/boxbuild/boxbuild/internal/runtime"
	"github.com/boxbuild/boxbuild/internal/tui"
)

type runOptions struct {
	ConfigPath     string
	WorkDir        string
	Timeout        time.Duration
	Verbose        bool
	NonInteractive bool
}

var runCmdRunner = runPipeline

func newRunCmd(root *rootFlags, registry *plugin.Registry) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a build pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))

			if err := validateRunOptions(opts); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runCmdRunner(ctx, opts, registry)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to pipeline file")
	cmd.Flags().StringVarP(&opts.WorkDir, "workspace", "w", "", "Workspace directory (defaults to a temporary directory)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Abort the run after this duration (0 disables)")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func runPipeline(ctx context.Context, opts runOptions, registry *plugin.Registry) error {
	pipeline, err := config.ParsePipeline(opts.ConfigPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	level := "info"
	if opts.Verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "boxbuild-*")
		if err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
	}

	env, err := runtime.Provision(runtime.Options{Box: pipeline.Box, WorkDir: workDir})
	if err != nil {
		return err
	}

	lock, err := runtime.AcquireLock(env.WorkDir())
	if err != nil {
		return err
	}
	defer lock.Release() //nolint:errcheck

	interactive := !opts.NonInteractive

	modelState := tui.NewModel(pipeline, opts.NonInteractive)

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	hooks := engine.Hooks{}
	if interactive {
		program = tea.NewProgram(modelState)
		go func() {
			_, programErr = program.Run()
			// The program exits early when the user hits ctrl-c; stop
			// the engine rather than let it run headless.
			cancel()
			close(done)
		}()

		hooks.OnStepStart = func(stepID string) {
			program.Send(tui.StepStartMsg{ID: stepID, Time: time.Now()})
		}
		hooks.OnStepComplete = func(result model.StepResult) {
			program.Send(tui.StepCompleteMsg{Result: result})
		}
	}

	execCtx := &engine.ExecutionContext{
		Pipeline: pipeline,
		Env:      env,
		Registry: registry,
		Logger:   log,
		Context:  ctx,
		Timeout:  opts.Timeout,
		Hooks:    hooks,
	}

	result, execErr := engine.Execute(execCtx)

	if interactive {
		program.Send(tea.QuitMsg{})
		<-done
		if programErr != nil {
			return programErr
		}
		if result != nil {
			fmt.Fprintln(os.Stdout, report.Summary(result))
		}
	} else {
		reporter := report.New(log, os.Stdout)
		reporter.Report(result)
	}

	return execErr
}
