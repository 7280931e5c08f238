package pipinstallplugin

import (
	"context"
	"os"
	"path/filepath"
	goruntime "runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/model"
	"github.com/boxbuild/boxbuild/internal/runtime"
	boxerrors "github.com/boxbuild/boxbuild/pkg/errors"
)

func newTestEnv(t *testing.T) *runtime.Environment {
	t.Helper()

	env, err := runtime.Provision(runtime.Options{Box: "python:3.11", WorkDir: t.TempDir()})
	require.NoError(t, err)
	return env
}

// writeFakePip installs a shell stub named pip into the active sandbox so the
// test can observe exactly which specifiers the installer was asked for.
func writeFakePip(t *testing.T, env *runtime.Environment) string {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	venvDir := env.Path("venv")
	binDir := filepath.Join(venvDir, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))

	recordFile := env.Path("pip-args.txt")
	script := "#!/bin/sh\necho \"$@\" > " + recordFile + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "pip"), []byte(script), 0o755))

	env.Activate(venvDir)
	return recordFile
}

func TestPipInstallPassesSpecifiersVerbatim(t *testing.T) {
	env := newTestEnv(t)
	recordFile := writeFakePip(t, env)

	step := &config.Step{Kind: config.KindPipInstall, PipInstall: &config.PipInstallStep{
		PackagesList: "pylint==1.1.0",
	}}

	res, err := New().Run(context.Background(), step, env)
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, res.Status)

	recorded, err := os.ReadFile(recordFile)
	require.NoError(t, err)
	require.Equal(t, "install pylint==1.1.0\n", string(recorded))
}

func TestPipInstallSplitsMultipleSpecifiers(t *testing.T) {
	env := newTestEnv(t)
	recordFile := writeFakePip(t, env)

	step := &config.Step{Kind: config.KindPipInstall, PipInstall: &config.PipInstallStep{
		PackagesList: "pylint==1.1.0, requests>=2.0",
	}}

	res, err := New().Run(context.Background(), step, env)
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, res.Status)

	recorded, err := os.ReadFile(recordFile)
	require.NoError(t, err)
	require.Equal(t, "install pylint==1.1.0 requests>=2.0\n", string(recorded))
}

func TestPipInstallPrefersActiveSandboxInstaller(t *testing.T) {
	env := newTestEnv(t)
	env.Activate(env.Path("venv"))

	installer, err := resolveInstaller(env)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(env.Path("venv"), "bin", "pip"), installer)
}

func TestPipInstallRejectsEmptySpecifierList(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	step := &config.Step{Kind: config.KindPipInstall, PipInstall: &config.PipInstallStep{
		PackagesList: " , ",
	}}

	_, err := New().Run(context.Background(), step, env)
	require.Error(t, err)

	var validationErr *boxerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestPipInstallMissingParameters(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	step := &config.Step{Kind: config.KindPipInstall}

	_, err := New().Run(context.Background(), step, env)
	require.Error(t, err)

	var validationErr *boxerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
