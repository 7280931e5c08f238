package pipinstallplugin

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/model"
	"github.com/boxbuild/boxbuild/internal/plugin"
	"github.com/boxbuild/boxbuild/internal/plugins/internalexec"
	"github.com/boxbuild/boxbuild/internal/runtime"
	boxerrors "github.com/boxbuild/boxbuild/pkg/errors"
)

type pipInstallPlugin struct{}

// New creates a new pip-install plugin instance.
func New() plugin.Plugin {
	return &pipInstallPlugin{}
}

var _ plugin.Plugin = (*pipInstallPlugin)(nil)

func (p *pipInstallPlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "pip-install",
		Version:     "1.0.0",
		Kind:        config.KindPipInstall,
		Description: "Installs the declared Python package specifiers with pip.",
	}
}

func (p *pipInstallPlugin) Schema() any {
	return config.PipInstallStep{}
}

// Run invokes the installer with the declared specifiers, verbatim. The
// installer itself is a collaborator: the sandbox pip when a virtualenv is
// active, otherwise whatever pip the inherited PATH resolves.
func (p *pipInstallPlugin) Run(ctx context.Context, step *config.Step, env *runtime.Environment) (*model.StepResult, error) {
	cfg := step.PipInstall
	if cfg == nil {
		return nil, boxerrors.NewValidationError(step.ID(), "pip-install parameters missing", nil)
	}

	packages := cfg.Packages()
	if len(packages) == 0 {
		return nil, boxerrors.NewValidationError(step.ID(), "packages_list contains no specifiers", nil)
	}

	installer, err := resolveInstaller(env)
	if err != nil {
		return nil, boxerrors.NewExecutionError(step.ID(), err)
	}

	args := append([]string{"install"}, packages...)
	cmd := exec.CommandContext(ctx, installer, args...)
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
	result.Message = fmt.Sprintf("installed %s", strings.Join(packages, ", "))
	return result, nil
}

func resolveInstaller(env *runtime.Environment) (string, error) {
	if venv, ok := env.Lookup("VIRTUAL_ENV"); ok && venv != "" {
		return filepath.Join(venv, "bin", "pip"), nil
	}

	for _, candidate := range []string{"pip3", "pip"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no pip installer found on PATH")
}
