// Package wizard holds the ordered upload steps and the state machine that
// unlocks them one at a time.
//
// Steps move strictly forward: locked → current → completed. A step becomes
// current only once every step before it is completed, and completed steps
// never revert. The package knows nothing about HTTP or files; uploads report
// back through [Orchestrator.HandleSuccess] and [Orchestrator.HandleFailure].
//
// Key types:
//   - [UploadStep] - one required upload stage, identified by its ID
//   - [Orchestrator] - owns the completed set, current index and error list
//   - [StepView] - derived per-step status for rendering
//   - [Runner] - drives every remaining step in order from a file map
package wizard

import (
	"errors"
	"fmt"

	"csvwizard/internal/config"
)

// Sentinel errors for step transitions.
var (
	// ErrUnknownStep indicates the step ID is not part of the configured sequence.
	ErrUnknownStep = errors.New("unknown step")

	// ErrStepLocked indicates a step reported completion before every previous
	// step completed. The transition is refused and no state changes.
	ErrStepLocked = errors.New("step is locked")

	// ErrNoSteps indicates an empty step sequence.
	ErrNoSteps = errors.New("no upload steps configured")
)

// UploadStep is one required upload stage. Steps are created once from
// configuration and never mutated.
type UploadStep struct {
	ID          string
	Title       string
	Description string
	Endpoint    string
}

// Status is the derived state of a step.
type Status string

// Step statuses.
const (
	StatusLocked    Status = "locked"
	StatusCurrent   Status = "current"
	StatusCompleted Status = "completed"
)

// StepView is an [UploadStep] with its derived flags. Exactly one of
// Completed, Current or Locked is true.
type StepView struct {
	UploadStep
	Completed bool
	Current   bool
	Locked    bool
}

// Status returns the single status the view's flags describe.
func (v StepView) Status() Status {
	switch {
	case v.Completed:
		return StatusCompleted
	case v.Current:
		return StatusCurrent
	default:
		return StatusLocked
	}
}

// StepsFromConfig converts configured steps to [UploadStep] values and
// validates the sequence.
func StepsFromConfig(cfgSteps []config.StepConfig) ([]UploadStep, error) {
	steps := make([]UploadStep, len(cfgSteps))
	for i, s := range cfgSteps {
		steps[i] = UploadStep{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Endpoint:    s.Endpoint,
		}
	}
	if err := ValidateSteps(steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// ValidateSteps checks that the sequence is non-empty and every step has a
// unique ID and an endpoint.
func ValidateSteps(steps []UploadStep) error {
	if len(steps) == 0 {
		return ErrNoSteps
	}
	seen := make(map[string]bool, len(steps))
	for i, s := range steps {
		if s.ID == "" {
			return fmt.Errorf("step %d: id is required", i+1)
		}
		if s.Endpoint == "" {
			return fmt.Errorf("step %s: endpoint is required", s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("step %s: duplicate id", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}
