package scriptplugin

import (
	"context"
	"fmt"
	"os/exec"
	goruntime "runtime"
	"time"

	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/model"
	"github.com/boxbuild/boxbuild/internal/plugin"
	"github.com/boxbuild/boxbuild/internal/plugins/internalexec"
	"github.com/boxbuild/boxbuild/internal/runtime"
	boxerrors "github.com/boxbuild/boxbuild/pkg/errors"
)

type scriptPlugin struct{}

// New creates a new script plugin instance.
func New() plugin.Plugin {
	return &scriptPlugin{}
}

var _ plugin.Plugin = (*scriptPlugin)(nil)

func (p *scriptPlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "script",
		Version:     "1.0.0",
		Kind:        config.KindScript,
		Description: "Runs multi-line shell text inside the provisioned environment.",
	}
}

func (p *scriptPlugin) Schema() any {
	return config.ScriptStep{}
}

// Run executes the script's shell text. The shell runs with errexit, so
// each line must succeed or the step fails; operators in the text are
// honored literally, which means a trailing `|| echo $?` fallback converts
// a failure of the preceding command into a successful step.
func (p *scriptPlugin) Run(ctx context.Context, step *config.Step, env *runtime.Environment) (*model.StepResult, error) {
	cfg := step.Script
	if cfg == nil {
		return nil, boxerrors.NewValidationError(step.ID(), "script parameters missing", nil)
	}

	shell, err := determineShell()
	if err != nil {
		return nil, boxerrors.NewExecutionError(step.ID(), err)
	}

	cmd := exec.CommandContext(ctx, shell, "-e", "-c", cfg.Code)
	cmd.Env = env.Environ()
	cmd.Dir = env.WorkDir()

	start := time.Now()
	streamResult, runErr := internalexec.RunStreaming(cmd)

	result := &model.StepResult{
		StepID:    step.ID(),
		ExitCode:  streamResult.ExitCode,
		Stdout:    streamResult.Stdout,
		Stderr:    streamResult.Stderr,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}

	if runErr != nil {
		combined := internalexec.PrimaryOutput(streamResult)
		if combined != "" {
			runErr = fmt.Errorf("%w: %s", runErr, combined)
		}
		result.Status = model.StatusFailed
		result.Message = runErr.Error()
		result.Error = runErr
		return result, boxerrors.NewExitError(step.ID(), streamResult.ExitCode, runErr)
	}

	result.Status = model.StatusSuccess
	result.Message = "script executed"
	return result, nil
}

func determineShell() (string, error) {
	if goruntime.GOOS == "windows" {
		return "", fmt.Errorf("script steps require a POSIX shell")
	}

	if path, err := exec.LookPath("bash"); err == nil {
		return path, nil
	}

	if path, err := exec.LookPath("sh"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("no suitable shell found")
}
