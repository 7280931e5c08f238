package internalexec

import (
	"bytes"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStreamingSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	cmd := exec.Command("echo", "hello world")

	result, err := RunStreaming(cmd)
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Stdout)
	assert.Equal(t, "", result.Stderr)
	assert.Equal(t, 0, result.ExitCode)
}

func TestRunStreamingCapturesExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	cmd := exec.Command("sh", "-c", "echo 'error message' >&2; exit 2")

	result, err := RunStreaming(cmd)
	require.Error(t, err)
	assert.Equal(t, "", result.Stdout)
	assert.Equal(t, "error message", result.Stderr)
	assert.Equal(t, 2, result.ExitCode)
}

func TestRunStreamingMirrorsToCustomWriters(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd := exec.Command("sh", "-c", "echo 'normal output'; echo 'error message' >&2")
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	result, err := RunStreaming(cmd)
	require.NoError(t, err)
	assert.Equal(t, "normal output", result.Stdout)
	assert.Equal(t, "error message", result.Stderr)
	assert.Equal(t, "normal output\n", stdoutBuf.String())
	assert.Equal(t, "error message\n", stderrBuf.String())
}

func TestRunQuietDoesNotNeedWriters(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}

	result, err := RunQuiet(exec.Command("printf", "quiet\n"))
	require.NoError(t, err)
	assert.Equal(t, "quiet", result.Stdout)
}

func TestRunStreamingCommandNotFound(t *testing.T) {
	cmd := exec.Command("this-command-does-not-exist")

	result, err := RunStreaming(cmd)
	require.Error(t, err)
	assert.Empty(t, result.Stdout)
	assert.Equal(t, -1, result.ExitCode)
}

func TestPrimaryOutput(t *testing.T) {
	t.Run("returns stderr when present", func(t *testing.T) {
		result := Result{Stdout: "normal output", Stderr: "error message"}
		assert.Equal(t, "error message", PrimaryOutput(result))
	})

	t.Run("returns stdout when no stderr", func(t *testing.T) {
		result := Result{Stdout: "normal output"}
		assert.Equal(t, "normal output", PrimaryOutput(result))
	})

	t.Run("returns empty string when both are empty", func(t *testing.T) {
		assert.Equal(t, "", PrimaryOutput(Result{}))
	})
}
