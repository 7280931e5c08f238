package plugin

import (
	"context"

	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/model"
	"github.com/boxbuild/boxbuild/internal/runtime"
)

// Metadata describes a step plugin for registry listings.
type Metadata struct {
	Name        string
	Version     string
	Kind        string
	Description string
}

// Plugin is the contract every step kind implements. A plugin receives the
// step descriptor and the shared run environment and performs the step's
// action, recording exit status and captured output in the result.
//
// Run must respect ctx cancellation on blocking work. A failing step
// returns both a failed StepResult (for reporting) and a non-nil error
// (which stops the run).
type Plugin interface {
	// Metadata returns the plugin's identity.
	Metadata() Metadata

	// Schema returns the struct defining the step's YAML parameter schema.
	Schema() any

	// Run executes the step inside the provisioned environment.
	Run(ctx context.Context, step *config.Step, env *runtime.Environment) (*model.StepResult, error)
}
