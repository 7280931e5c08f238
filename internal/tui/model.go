package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/model"
)

// StepStartMsg indicates a step has started executing.
type StepStartMsg struct {
	ID   string
	Time time.Time
}

// StepCompleteMsg reports that a step has finished execution.
type StepCompleteMsg struct {
	Result model.StepResult
}

type tickMsg struct{}

// Model contains the Bubbletea state for a pipeline run.
type Model struct {
	pipeline       *config.Pipeline
	steps          map[string]model.StepResult
	order          []string
	total          int
	completed      int
	failed         int
	finished       bool
	cancelled      bool
	nonInteractive bool
	start          time.Time
	elapsed        time.Duration
}

// NewModel constructs a new TUI model for the given pipeline. Step order in
// the view matches declaration order.
func NewModel(pipeline *config.Pipeline, nonInteractive bool) Model {
	m := Model{
		pipeline:       pipeline,
		steps:          make(map[string]model.StepResult),
		order:          make([]string, 0),
		nonInteractive: nonInteractive,
		start:          time.Now(),
	}

	if pipeline != nil {
		for _, step := range pipeline.Build.Steps {
			id := step.ID()
			if _, exists := m.steps[id]; !exists {
				m.steps[id] = model.StepResult{StepID: id, Status: model.StatusPending}
				m.order = append(m.order, id)
				m.total++
			}
		}
	}

	return m
}

// Init starts the elapsed-time ticker. Non-interactive rendering happens
// once, after all results arrive, so it needs no ticker.
func (m Model) Init() tea.Cmd {
	if m.nonInteractive {
		return nil
	}
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalSteps returns the total number of steps tracked by the model.
func (m Model) TotalSteps() int {
	return m.total
}

// CompletedSteps returns the number of completed steps.
func (m Model) CompletedSteps() int {
	return m.completed
}

// IsFinished reports whether the run has completed.
func (m Model) IsFinished() bool {
	return m.finished
}

func (m *Model) ensureStep(id string) {
	if id == "" {
		return
	}
	if _, exists := m.steps[id]; !exists {
		m.steps[id] = model.StepResult{StepID: id, Status: model.StatusPending}
		m.order = append(m.order, id)
		m.total++
	}
}

func (m *Model) markFinishedIfComplete() {
	if m.total > 0 && m.completed >= m.total {
		m.finished = true
	}
}
