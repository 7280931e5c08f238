package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/boxbuild/boxbuild/internal/logger"
	"github.com/boxbuild/boxbuild/internal/model"
)

var (
	passStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// Reporter surfaces pipeline outcomes through the structured logger and a
// human-readable summary.
type Reporter struct {
	log *logger.Logger
	out io.Writer
}

// New creates a Reporter writing its summary to out.
func New(log *logger.Logger, out io.Writer) *Reporter {
	return &Reporter{log: log, out: out}
}

// Report logs every step outcome and writes the run summary. It returns the
// overall success flag: the logical AND of the step successes.
func (r *Reporter) Report(result *model.PipelineResult) bool {
	if result == nil {
		return false
	}

	for _, step := range result.Steps {
		fields := map[string]any{
			"step":     step.StepID,
			"status":   step.Status,
			"exit":     step.ExitCode,
			"duration": step.Duration.String(),
		}
		if step.Succeeded() {
			r.log.WithFields(fields).Info("step result")
		} else {
			r.log.WithFields(fields).Error(step.Error, "step result")
		}
	}

	success := result.Success()
	runFields := map[string]any{
		"box":      result.Box,
		"steps":    len(result.Steps),
		"duration": result.Duration.String(),
	}
	if success {
		r.log.WithFields(runFields).Info("pipeline passed")
	} else {
		r.log.WithFields(runFields).Error(nil, "pipeline failed")
	}

	if r.out != nil {
		fmt.Fprintln(r.out, Summary(result))
	}

	return success
}

// Summary renders the pipeline outcome as human-readable text.
func Summary(result *model.PipelineResult) string {
	if result == nil {
		return failStyle.Render("no result")
	}

	var lines []string
	lines = append(lines, headerStyle.Render(fmt.Sprintf("Pipeline (box %s)", result.Box)))

	for _, step := range result.Steps {
		icon := passStyle.Render("✓")
		if !step.Succeeded() {
			icon = failStyle.Render("✗")
		}
		line := fmt.Sprintf(" %s %s", icon, step.StepID)
		if strings.TrimSpace(step.Message) != "" {
			line = fmt.Sprintf("%s — %s", line, step.Message)
		}
		if step.Duration > 0 {
			line = fmt.Sprintf("%s %s", line, mutedStyle.Render(fmt.Sprintf("(%s)", step.Duration.Truncate(10*time.Millisecond))))
		}
		lines = append(lines, line)
	}

	verdict := passStyle.Render(fmt.Sprintf("PASSED — %d/%d steps", result.Completed(), len(result.Steps)))
	if !result.Success() {
		verdict = failStyle.Render(fmt.Sprintf("FAILED — %d/%d steps completed", result.Completed(), len(result.Steps)))
	}
	lines = append(lines, verdict)

	return strings.Join(lines, "\n")
}
