package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boxbuild/boxbuild/internal/model"
)

func TestViewListsStepsInDeclarationOrder(t *testing.T) {
	m := NewModel(testPipeline(), true)
	view := m.View()

	require.Contains(t, view, "python:3.11")
	virtualenvIdx := strings.Index(view, "virtualenv")
	lintIdx := strings.Index(view, "lint")
	require.GreaterOrEqual(t, virtualenvIdx, 0)
	require.Greater(t, lintIdx, virtualenvIdx)
}

func TestViewShowsVerdictWhenFinished(t *testing.T) {
	m := NewModel(testPipeline(), true)

	for _, id := range []string{"virtualenv", "lint"} {
		updated, _ := m.Update(StepCompleteMsg{Result: model.StepResult{StepID: id, Status: model.StatusSuccess}})
		m = updated.(Model)
	}

	require.True(t, m.IsFinished())
	require.Contains(t, m.View(), "Pipeline passed")
}

func TestStatusIconCoverage(t *testing.T) {
	for _, status := range []string{
		model.StatusSuccess,
		model.StatusRunning,
		model.StatusFailed,
		model.StatusSkipped,
		model.StatusPending,
	} {
		require.NotEmpty(t, StatusIcon(status))
	}
}
