package model

import (
	"time"
)

// PipelineResult aggregates step outcomes for a single pipeline run.
// Steps holds results in execution order, which is declaration order.
type PipelineResult struct {
	Box      string
	Steps    []StepResult
	Duration time.Duration
	Started  time.Time
}

// Success is the logical AND of the step successes. A run that executed
// zero steps is successful.
func (r PipelineResult) Success() bool {
	for _, step := range r.Steps {
		if !step.Succeeded() {
			return false
		}
	}
	return true
}

// Failed returns the first failing step result, if any.
func (r PipelineResult) Failed() (StepResult, bool) {
	for _, step := range r.Steps {
		if !step.Succeeded() {
			return step, true
		}
	}
	return StepResult{}, false
}

// Completed counts steps that reached a terminal status.
func (r PipelineResult) Completed() int {
	count := 0
	for _, step := range r.Steps {
		switch step.Status {
		case StatusSuccess, StatusSkipped, StatusFailed:
			count++
		}
	}
	return count
}
