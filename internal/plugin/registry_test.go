package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/logger"
	"github.com/boxbuild/boxbuild/internal/model"
	"github.com/boxbuild/boxbuild/internal/runtime"
	boxerrors "github.com/boxbuild/boxbuild/pkg/errors"
)

type stubPlugin struct {
	kind string
}

func (p *stubPlugin) Metadata() Metadata {
	return Metadata{Name: p.kind, Version: "1.0.0", Kind: p.kind}
}

func (p *stubPlugin) Schema() any { return nil }

func (p *stubPlugin) Run(ctx context.Context, step *config.Step, env *runtime.Environment) (*model.StepResult, error) {
	return &model.StepResult{StepID: step.ID(), Status: model.StatusSuccess}, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "error"})
	require.NoError(t, err)
	return log
}

func TestRegistryRegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestLogger(t))
	require.NoError(t, reg.Register("script", &stubPlugin{kind: "script"}))

	p, err := reg.Get("script")
	require.NoError(t, err)
	require.Equal(t, "script", p.Metadata().Kind)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestLogger(t))
	require.NoError(t, reg.Register("virtualenv", &stubPlugin{kind: "virtualenv"}))

	err := reg.Register("virtualenv", &stubPlugin{kind: "virtualenv"})
	require.Error(t, err)

	var pluginErr *boxerrors.PluginError
	require.ErrorAs(t, err, &pluginErr)
	require.Equal(t, "virtualenv", pluginErr.Plugin)
}

func TestRegistryRejectsNilPlugin(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestLogger(t))
	require.Error(t, reg.Register("script", nil))
}

func TestRegistryGetUnknownKind(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestLogger(t))
	_, err := reg.Get("rspec")
	require.Error(t, err)

	var pluginErr *boxerrors.PluginError
	require.ErrorAs(t, err, &pluginErr)
}

func TestRegistryKindsSorted(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(newTestLogger(t))
	for _, kind := range []string{"script", "git-checkout", "virtualenv", "pip-install"} {
		require.NoError(t, reg.Register(kind, &stubPlugin{kind: kind}))
	}

	require.Equal(t, []string{"git-checkout", "pip-install", "script", "virtualenv"}, reg.Kinds())
}
