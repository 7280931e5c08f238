package checkoutplugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/model"
	"github.com/boxbuild/boxbuild/internal/plugin"
	"github.com/boxbuild/boxbuild/internal/runtime"
	boxerrors "github.com/boxbuild/boxbuild/pkg/errors"
)

type checkoutPlugin struct{}

// New creates a new git-checkout plugin instance.
func New() plugin.Plugin {
	return &checkoutPlugin{}
}

var _ plugin.Plugin = (*checkoutPlugin)(nil)

func (p *checkoutPlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "git-checkout",
		Version:     "1.0.0",
		Kind:        config.KindCheckout,
		Description: "Clones the source repository into the workspace before building.",
	}
}

func (p *checkoutPlugin) Schema() any {
	return config.CheckoutStep{}
}

// Run clones the declared repository under the workspace. An existing clone
// at the destination is left alone and the step is skipped.
func (p *checkoutPlugin) Run(ctx context.Context, step *config.Step, env *runtime.Environment) (*model.StepResult, error) {
	cfg := step.Checkout
	if cfg == nil {
		return nil, boxerrors.NewValidationError(step.ID(), "git-checkout parameters missing", nil)
	}

	start := time.Now()
	dest := destination(cfg, env)

	if _, err := git.PlainOpen(dest); err == nil {
		return &model.StepResult{
			StepID:    step.ID(),
			Status:    model.StatusSkipped,
			Message:   fmt.Sprintf("repository already checked out at %s", dest),
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}, nil
	}

	opts := &git.CloneOptions{
		URL:      cfg.URL,
		Progress: os.Stdout,
	}
	if cfg.Depth > 0 {
		opts.Depth = cfg.Depth
	}
	if cfg.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(cfg.Branch)
		opts.SingleBranch = true
	}

	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		if errors.Is(err, git.ErrRepositoryAlreadyExists) {
			return &model.StepResult{
				StepID:    step.ID(),
				Status:    model.StatusSkipped,
				Message:   fmt.Sprintf("repository already checked out at %s", dest),
				Duration:  time.Since(start),
				Timestamp: time.Now(),
			}, nil
		}

		cloneErr := fmt.Errorf("clone %s: %w", cfg.URL, err)
		result := &model.StepResult{
			StepID:    step.ID(),
			Status:    model.StatusFailed,
			Message:   cloneErr.Error(),
			ExitCode:  -1,
			Error:     cloneErr,
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}
		return result, boxerrors.NewExecutionError(step.ID(), cloneErr)
	}

	return &model.StepResult{
		StepID:    step.ID(),
		Status:    model.StatusSuccess,
		Message:   fmt.Sprintf("checked out %s", cfg.URL),
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}, nil
}

func destination(cfg *config.CheckoutStep, env *runtime.Environment) string {
	if cfg.Destination != "" {
		if filepath.IsAbs(cfg.Destination) {
			return cfg.Destination
		}
		return env.Path(cfg.Destination)
	}
	return env.Path(repoName(cfg.URL))
}

func repoName(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if idx := strings.LastIndexAny(trimmed, "/:"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if trimmed == "" {
		return "source"
	}
	return trimmed
}
