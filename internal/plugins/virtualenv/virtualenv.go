package virtualenvplugin

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/model"
	"github.com/boxbuild/boxbuild/internal/plugin"
	"github.com/boxbuild/boxbuild/internal/plugins/internalexec"
	"github.com/boxbuild/boxbuild/internal/runtime"
	boxerrors "github.com/boxbuild/boxbuild/pkg/errors"
)

type virtualenvPlugin struct{}

// New creates a new virtualenv plugin instance.
func New() plugin.Plugin {
	return &virtualenvPlugin{}
}

var _ plugin.Plugin = (*virtualenvPlugin)(nil)

func (p *virtualenvPlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "virtualenv",
		Version:     "1.0.0",
		Kind:        config.KindVirtualenv,
		Description: "Creates an isolated Python sandbox and activates it for later steps.",
	}
}

func (p *virtualenvPlugin) Schema() any {
	return config.VirtualenvStep{}
}

// Run creates the sandbox under the workspace and activates it so the
// remaining steps inherit the sandboxed PATH and VIRTUAL_ENV. Recreating an
// existing sandbox is skipped, not an error.
func (p *virtualenvPlugin) Run(ctx context.Context, step *config.Step, env *runtime.Environment) (*model.StepResult, error) {
	cfg := step.Virtualenv
	if cfg == nil {
		return nil, boxerrors.NewValidationError(step.ID(), "virtualenv parameters missing", nil)
	}

	start := time.Now()
	venvDir := env.Path(cfg.Name)

	if sandboxExists(venvDir) {
		env.Activate(venvDir)
		return &model.StepResult{
			StepID:    step.ID(),
			Status:    model.StatusSkipped,
			Message:   fmt.Sprintf("virtual environment %s already exists", cfg.Name),
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}, nil
	}

	python, err := env.Python()
	if err != nil {
		return nil, boxerrors.NewExecutionError(step.ID(), err)
	}

	cmd := exec.CommandContext(ctx, python, "-m", "venv", venvDir)
	cmd.Env = env.Environ()
	cmd.Dir = env.WorkDir()

	streamResult, runErr := internalexec.RunStreaming(cmd)
	if runErr != nil {
		combined := internalexec.PrimaryOutput(streamResult)
		if combined != "" {
			runErr = fmt.Errorf("%w: %s", runErr, combined)
		}
		result := &model.StepResult{
			StepID:    step.ID(),
			Status:    model.StatusFailed,
			Message:   runErr.Error(),
			ExitCode:  streamResult.ExitCode,
			Stdout:    streamResult.Stdout,
			Stderr:    streamResult.Stderr,
			Error:     runErr,
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}
		return result, boxerrors.NewExitError(step.ID(), streamResult.ExitCode, runErr)
	}

	env.Activate(venvDir)

	return &model.StepResult{
		StepID:    step.ID(),
		Status:    model.StatusSuccess,
		Message:   fmt.Sprintf("virtual environment %s created", cfg.Name),
		Stdout:    streamResult.Stdout,
		Stderr:    streamResult.Stderr,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}, nil
}

func sandboxExists(venvDir string) bool {
	if _, err := os.Stat(filepath.Join(venvDir, "bin", "python")); err == nil {
		return true
	}
	return false
}
