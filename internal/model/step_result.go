package model

import (
	"time"
)

const (
	// StatusPending indicates a step has not started yet.
	StatusPending = "pending"
	// StatusRunning indicates a step is actively executing.
	StatusRunning = "running"
	// StatusSuccess marks a successful step execution.
	StatusSuccess = "success"
	// StatusSkipped indicates the executor skipped the step.
	StatusSkipped = "skipped"
	// StatusFailed marks a failure during step execution.
	StatusFailed = "failed"
)

// StepResult captures the outcome of executing a single pipeline step.
// ExitCode is the status of the step's primary process; steps that do not
// spawn a process report zero on success.
type StepResult struct {
	StepID    string
	Status    string
	Message   string
	ExitCode  int
	Stdout    string
	Stderr    string
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}

// Succeeded reports whether the step completed without failure.
func (r StepResult) Succeeded() bool {
	return r.Status == StatusSuccess || r.Status == StatusSkipped
}
