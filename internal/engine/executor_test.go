package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/logger"
	"github.com/boxbuild/boxbuild/internal/model"
	"github.com/boxbuild/boxbuild/internal/plugin"
	"github.com/boxbuild/boxbuild/internal/runtime"
	boxerrors "github.com/boxbuild/boxbuild/pkg/errors"
)

type recordingPlugin struct {
	kind  string
	order *[]string
	fail  bool
	delay time.Duration
}

func (p *recordingPlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{Name: p.kind, Version: "1.0.0", Kind: p.kind}
}

func (p *recordingPlugin) Schema() any { return nil }

func (p *recordingPlugin) Run(ctx context.Context, step *config.Step, env *runtime.Environment) (*model.StepResult, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return &model.StepResult{StepID: step.ID(), Status: model.StatusFailed, Error: ctx.Err()},
				boxerrors.NewExecutionError(step.ID(), ctx.Err())
		}
	}

	*p.order = append(*p.order, step.ID())

	if p.fail {
		err := errors.New("step exploded")
		return &model.StepResult{StepID: step.ID(), Status: model.StatusFailed, ExitCode: 1, Error: err},
			boxerrors.NewExitError(step.ID(), 1, err)
	}
	return &model.StepResult{StepID: step.ID(), Status: model.StatusSuccess}, nil
}

func newExecCtx(t *testing.T, steps []config.Step, plugins map[string]plugin.Plugin) *ExecutionContext {
	t.Helper()

	log, err := logger.New(logger.Options{Level: "error"})
	require.NoError(t, err)

	registry := plugin.NewRegistry(log)
	for kind, p := range plugins {
		require.NoError(t, registry.Register(kind, p))
	}

	env, err := runtime.Provision(runtime.Options{Box: "python:3.11", WorkDir: t.TempDir()})
	require.NoError(t, err)

	return &ExecutionContext{
		Pipeline: &config.Pipeline{Box: "python:3.11", Build: config.Build{Steps: steps}},
		Env:      env,
		Registry: registry,
		Logger:   log,
		Context:  context.Background(),
	}
}

func scriptStep(name string) config.Step {
	return config.Step{Kind: config.KindScript, Script: &config.ScriptStep{Name: name, Code: "echo " + name}}
}

func TestExecuteRunsStepsInDeclarationOrder(t *testing.T) {
	t.Parallel()

	var order []string
	steps := []config.Step{scriptStep("first"), scriptStep("second"), scriptStep("third")}
	execCtx := newExecCtx(t, steps, map[string]plugin.Plugin{
		config.KindScript: &recordingPlugin{kind: config.KindScript, order: &order},
	})

	result, err := Execute(execCtx)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "third"}, order)
	require.Len(t, result.Steps, 3)
	require.Equal(t, "first", result.Steps[0].StepID)
	require.Equal(t, "second", result.Steps[1].StepID)
	require.Equal(t, "third", result.Steps[2].StepID)
	require.True(t, result.Success())
}

func TestExecuteStopsOnFirstFailure(t *testing.T) {
	t.Parallel()

	var order []string
	failing := &recordingPlugin{kind: config.KindPipInstall, order: &order, fail: true}
	passing := &recordingPlugin{kind: config.KindScript, order: &order}

	steps := []config.Step{
		{Kind: config.KindPipInstall, PipInstall: &config.PipInstallStep{PackagesList: "pylint==1.1.0"}},
		scriptStep("after"),
	}
	execCtx := newExecCtx(t, steps, map[string]plugin.Plugin{
		config.KindPipInstall: failing,
		config.KindScript:     passing,
	})

	result, err := Execute(execCtx)
	require.Error(t, err)
	require.Equal(t, []string{"pip-install"}, order)
	require.Len(t, result.Steps, 1)
	require.False(t, result.Success())

	var execErr *boxerrors.ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, 1, execErr.ExitCode)
}

func TestExecuteEmptyStepListSucceeds(t *testing.T) {
	t.Parallel()

	execCtx := newExecCtx(t, nil, nil)

	result, err := Execute(execCtx)
	require.NoError(t, err)
	require.Empty(t, result.Steps)
	require.True(t, result.Success())
	require.Equal(t, "python:3.11", result.Box)
}

func TestExecuteUnregisteredKindFails(t *testing.T) {
	t.Parallel()

	execCtx := newExecCtx(t, []config.Step{scriptStep("orphan")}, nil)

	result, err := Execute(execCtx)
	require.Error(t, err)
	require.Empty(t, result.Steps)

	var pluginErr *boxerrors.PluginError
	require.ErrorAs(t, err, &pluginErr)
}

func TestExecuteHonorsTimeout(t *testing.T) {
	t.Parallel()

	var order []string
	slow := &recordingPlugin{kind: config.KindScript, order: &order, delay: time.Second}

	execCtx := newExecCtx(t, []config.Step{scriptStep("slow")}, map[string]plugin.Plugin{
		config.KindScript: slow,
	})
	execCtx.Timeout = 20 * time.Millisecond

	result, err := Execute(execCtx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "timeout exceeded")
	require.Len(t, result.Steps, 1)
	require.Equal(t, model.StatusFailed, result.Steps[0].Status)
}

func TestExecuteNotifiesHooks(t *testing.T) {
	t.Parallel()

	var order []string
	var started []string
	var completed []string

	execCtx := newExecCtx(t, []config.Step{scriptStep("only")}, map[string]plugin.Plugin{
		config.KindScript: &recordingPlugin{kind: config.KindScript, order: &order},
	})
	execCtx.Hooks = Hooks{
		OnStepStart:    func(id string) { started = append(started, id) },
		OnStepComplete: func(res model.StepResult) { completed = append(completed, res.StepID) },
	}

	_, err := Execute(execCtx)
	require.NoError(t, err)
	require.Equal(t, []string{"only"}, started)
	require.Equal(t, []string{"only"}, completed)
}
