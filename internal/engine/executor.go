package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boxbuild/boxbuild/internal/model"
	boxerrors "github.com/boxbuild/boxbuild/pkg/errors"
)

// Execute runs the pipeline's steps strictly in declaration order inside the
// provisioned environment. No step begins until the previous one has fully
// completed; the first failure aborts the run. The returned PipelineResult
// always holds the results collected so far, failure included.
func Execute(execCtx *ExecutionContext) (*model.PipelineResult, error) {
	if execCtx == nil {
		return nil, boxerrors.NewExecutionError("", fmt.Errorf("execution context is nil"))
	}
	if execCtx.Pipeline == nil {
		return nil, boxerrors.NewExecutionError("", fmt.Errorf("execution context pipeline is nil"))
	}
	if execCtx.Env == nil {
		return nil, boxerrors.NewExecutionError("", fmt.Errorf("execution context environment is nil"))
	}
	if execCtx.Registry == nil {
		return nil, boxerrors.NewExecutionError("", fmt.Errorf("execution context registry is nil"))
	}

	baseCtx := execCtx.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	ctx := baseCtx
	var cancel context.CancelFunc
	if execCtx.Timeout > 0 {
		ctx, cancel = context.WithTimeout(baseCtx, execCtx.Timeout)
	} else {
		ctx, cancel = context.WithCancel(baseCtx)
	}
	defer cancel()

	start := time.Now()
	pipelineResult := &model.PipelineResult{
		Box:     execCtx.Pipeline.Box,
		Started: start,
	}

	log := execCtx.Logger.WithFields(map[string]any{"box": execCtx.Pipeline.Box})
	log.Info("pipeline started")

	for i := range execCtx.Pipeline.Build.Steps {
		step := &execCtx.Pipeline.Build.Steps[i]
		stepID := step.ID()

		if err := ctx.Err(); err != nil {
			pipelineResult.Duration = time.Since(start)
			return pipelineResult, interruptionError(stepID, err)
		}

		impl, err := execCtx.Registry.Get(step.Kind)
		if err != nil {
			pipelineResult.Duration = time.Since(start)
			return pipelineResult, err
		}

		if execCtx.Hooks.OnStepStart != nil {
			execCtx.Hooks.OnStepStart(stepID)
		}
		execCtx.Logger.WithStep(stepID).Info("step started")

		result, runErr := impl.Run(ctx, step, execCtx.Env)
		if result == nil {
			result = &model.StepResult{StepID: stepID}
		}
		if result.StepID == "" {
			result.StepID = stepID
		}
		if result.Timestamp.IsZero() {
			result.Timestamp = time.Now()
		}
		if runErr != nil && result.Status == "" {
			result.Status = model.StatusFailed
		}

		pipelineResult.Steps = append(pipelineResult.Steps, *result)
		if execCtx.Hooks.OnStepComplete != nil {
			execCtx.Hooks.OnStepComplete(*result)
		}

		stepLog := execCtx.Logger.WithFields(map[string]any{
			"step":     stepID,
			"status":   result.Status,
			"exit":     result.ExitCode,
			"duration": result.Duration.String(),
		})

		if runErr != nil {
			stepLog.Error(runErr, "step failed")
			pipelineResult.Duration = time.Since(start)
			return pipelineResult, wrapStepError(ctx, stepID, runErr)
		}

		stepLog.Info("step finished")
	}

	pipelineResult.Duration = time.Since(start)
	log.WithFields(map[string]any{
		"steps":    len(pipelineResult.Steps),
		"duration": pipelineResult.Duration.String(),
	}).Info("pipeline finished")

	return pipelineResult, nil
}

func wrapStepError(ctx context.Context, stepID string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return boxerrors.NewExecutionError(stepID, fmt.Errorf("timeout exceeded: %w", err))
	}

	var execErr *boxerrors.ExecutionError
	if errors.As(err, &execErr) {
		return err
	}
	var validationErr *boxerrors.ValidationError
	if errors.As(err, &validationErr) {
		return err
	}

	return boxerrors.NewExecutionError(stepID, err)
}

func interruptionError(stepID string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return boxerrors.NewExecutionError(stepID, fmt.Errorf("timeout exceeded before step started"))
	}
	return boxerrors.NewExecutionError(stepID, err)
}
