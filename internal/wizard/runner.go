package wizard

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingFile indicates no file was supplied for a step the runner must upload.
var ErrMissingFile = errors.New("no file supplied for step")

// StepUploader uploads one file for one step and applies the outcome to the
// wizard state. The page package provides the production implementation.
type StepUploader interface {
	UploadStep(ctx context.Context, stepID, path string) error
}

// StepSource exposes the derived step views the runner plans from.
type StepSource interface {
	Views() []StepView
}

// ProgressCallback is invoked before each step upload begins.
//
// The callback receives stepIndex (1-based among the remaining steps),
// totalSteps remaining, and the step about to be uploaded.
type ProgressCallback func(stepIndex, totalSteps int, step UploadStep)

// Runner drives every remaining step in order, one upload at a time.
//
// Runner uses fail-fast behavior: it stops at the first failed upload and
// leaves later steps locked, exactly as a user would be stopped at the
// failing step.
type Runner struct {
	uploader         StepUploader
	source           StepSource
	progressCallback ProgressCallback
}

// NewRunner creates a [Runner]. Progress reporting is off until
// [Runner.SetProgressCallback] is called.
func NewRunner(uploader StepUploader, source StepSource) *Runner {
	return &Runner{
		uploader: uploader,
		source:   source,
	}
}

// SetProgressCallback configures an optional progress callback.
func (r *Runner) SetProgressCallback(cb ProgressCallback) {
	r.progressCallback = cb
}

// Plan returns the steps that are not yet completed, in upload order,
// without uploading anything. Used for dry runs.
func (r *Runner) Plan() []UploadStep {
	var remaining []UploadStep
	for _, v := range r.source.Views() {
		if !v.Completed {
			remaining = append(remaining, v.UploadStep)
		}
	}
	return remaining
}

// Execute uploads files[step.ID] for every remaining step in order.
//
// The remaining steps are taken from [Runner.Plan] once, when Execute is
// called. Steps already completed are skipped, so a run that stopped at a
// rejected step can be repeated with a corrected file and picks up where it
// left off. Entries in files for completed or unknown step IDs are ignored.
//
// Every remaining step must have a file before anything is uploaded; a gap
// returns [ErrMissingFile] up front so no partial sequence is started.
//
// Uploads are strictly sequential: the next step is only attempted after
// the previous one succeeded and the uploader unlocked it. The first
// upload error stops the run and is returned wrapped with the step ID, so
// callers can still match the uploader's errors with errors.Is and
// errors.As. Later steps stay locked and nothing is sent for them.
//
// ctx is checked before each step and passed to the uploader; cancelling
// it stops the run with ctx.Err() and leaves completed steps completed.
// The progress callback, when set, runs on the calling goroutine before
// each upload.
func (r *Runner) Execute(ctx context.Context, files map[string]string) error {
	remaining := r.Plan()

	for _, step := range remaining {
		if files[step.ID] == "" {
			return fmt.Errorf("%w: %s", ErrMissingFile, step.ID)
		}
	}

	total := len(remaining)
	for i, step := range remaining {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.progressCallback != nil {
			r.progressCallback(i+1, total, step)
		}

		if err := r.uploader.UploadStep(ctx, step.ID, files[step.ID]); err != nil {
			return fmt.Errorf("step %s failed: %w", step.ID, err)
		}
	}

	return nil
}
