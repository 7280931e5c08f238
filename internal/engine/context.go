package engine

import (
	"context"
	"time"

	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/logger"
	"github.com/boxbuild/boxbuild/internal/model"
	"github.com/boxbuild/boxbuild/internal/plugin"
	"github.com/boxbuild/boxbuild/internal/runtime"
)

// Hooks receives step lifecycle notifications, primarily for the TUI.
// Either field may be nil.
type Hooks struct {
	OnStepStart    func(stepID string)
	OnStepComplete func(result model.StepResult)
}

// ExecutionContext carries everything a pipeline run needs.
type ExecutionContext struct {
	Pipeline *config.Pipeline
	Env      *runtime.Environment
	Registry *plugin.Registry
	Logger   *logger.Logger
	Context  context.Context
	// Timeout bounds the whole run when positive.
	Timeout time.Duration
	Hooks   Hooks
}
