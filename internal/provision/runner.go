// Package provision implements the ordered, idempotent setup workflow.
// Each step declares a precondition check; satisfied steps are logged as
// skipped instead of re-applied, which is what makes reruns against a live
// system safe.
package provision

import (
	"context"
	"fmt"

	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

// Step is one named unit of the provisioning sequence. Check reports
// whether the target state already exists; OneTime steps are additionally
// skipped wholesale when the operator reuses an existing configuration.
type Step struct {
	Name    string
	Desc    string
	OneTime bool
	Check   func(ctx context.Context) (bool, error)
	Run     func(ctx context.Context) error
}

// StepError names the step that aborted the run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

const (
	StatusApplied = "applied"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

type StepStatus struct {
	Name   string
	Status string
}

// Result reports what a run did.
type Result struct {
	Statuses []StepStatus
}

func (r Result) Count(status string) int {
	n := 0
	for _, s := range r.Statuses {
		if s.Status == status {
			n++
		}
	}
	return n
}

func (r Result) Applied() []string { return r.names(StatusApplied) }
func (r Result) Skipped() []string { return r.names(StatusSkipped) }

func (r Result) names(status string) []string {
	var out []string
	for _, s := range r.Statuses {
		if s.Status == status {
			out = append(out, s.Name)
		}
	}
	return out
}

// RunSteps executes the sequence in order, fail-fast. The returned Result
// covers every step up to and including the failed one.
func RunSteps(ctx context.Context, steps []Step, reuseMode bool) (Result, error) {
	var result Result
	total := len(steps)

	for i, step := range steps {
		ui.Step(i+1, total, step.Desc)

		if reuseMode && step.OneTime {
			ui.Info("  skipped (reusing existing configuration)\n")
			result.Statuses = append(result.Statuses, StepStatus{step.Name, StatusSkipped})
			continue
		}

		if step.Check != nil {
			satisfied, err := step.Check(ctx)
			if err != nil {
				result.Statuses = append(result.Statuses, StepStatus{step.Name, StatusFailed})
				return result, &StepError{Step: step.Name, Err: fmt.Errorf("precondition check: %w", err)}
			}
			if satisfied {
				ui.Info("  skipped (already in place)\n")
				result.Statuses = append(result.Statuses, StepStatus{step.Name, StatusSkipped})
				continue
			}
		}

		if err := step.Run(ctx); err != nil {
			result.Statuses = append(result.Statuses, StepStatus{step.Name, StatusFailed})
			return result, &StepError{Step: step.Name, Err: err}
		}
		result.Statuses = append(result.Statuses, StepStatus{step.Name, StatusApplied})
	}

	return result, nil
}
