package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/boxbuild/boxbuild/internal/model"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.nonInteractive || m.finished {
			return m, nil
		}
		m.elapsed = time.Since(m.start)
		return m, tickCmd()
	case StepStartMsg:
		m.ensureStep(msg.ID)
		step := m.steps[msg.ID]
		step.Status = model.StatusRunning
		m.steps[msg.ID] = step
		return m, nil
	case StepCompleteMsg:
		id := msg.Result.StepID
		if id == "" {
			return m, nil
		}
		m.ensureStep(id)
		existing := m.steps[id]
		previouslyCompleted := existing.Status == model.StatusSuccess || existing.Status == model.StatusSkipped || existing.Status == model.StatusFailed
		m.steps[id] = msg.Result
		if !previouslyCompleted {
			m.completed++
			m.markFinishedIfComplete()
		}
		if msg.Result.Status == model.StatusFailed {
			m.failed++
			m.finished = true
		}
		return m, nil
	case tea.KeyMsg:
		// Raw mode delivers ctrl-c as a key press, not a signal, so the
		// quit has to propagate from here.
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
