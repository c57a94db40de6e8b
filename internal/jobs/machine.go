package jobs

import (
	"fmt"
	"strings"
)

// BeginProcessing transitions a record from Pending to Processing, resetting
// progress to the run start checkpoint and clearing any stale error. Allowed
// exactly once per record: a record already in Processing is rejected, which
// doubles as the entry gate against a second executor run on the same id.
func (r *Record) BeginProcessing() error {
	if r.Status != StatusPending {
		return fmt.Errorf("%w: cannot begin processing from %s", ErrInvalidTransition, r.Status)
	}
	r.Status = StatusProcessing
	r.Progress = 0
	r.ErrorMessage = ""
	return nil
}

// AdvanceProgress records a checkpoint while Processing. A value below the
// last recorded progress is rejected: checkpoints are emitted sequentially by
// a single executor, so a regression can only mean two writers.
func (r *Record) AdvanceProgress(progress int) error {
	if r.Status != StatusProcessing {
		return fmt.Errorf("%w: cannot update progress in %s", ErrInvalidTransition, r.Status)
	}
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: progress %d out of range", ErrInvalidTransition, progress)
	}
	if progress < r.Progress {
		return fmt.Errorf("%w: progress %d below recorded %d", ErrInvalidTransition, progress, r.Progress)
	}
	r.Progress = progress
	return nil
}

// Complete transitions a Processing record to Completed with the rendered
// output reference. Progress is pinned to 100.
func (r *Record) Complete(outputPath string) error {
	if r.Status != StatusProcessing {
		return fmt.Errorf("%w: cannot complete from %s", ErrInvalidTransition, r.Status)
	}
	if strings.TrimSpace(outputPath) == "" {
		return fmt.Errorf("%w: completion requires an output reference", ErrInvalidTransition)
	}
	r.Status = StatusCompleted
	r.OutputPath = outputPath
	r.Progress = 100
	r.ErrorMessage = ""
	return nil
}

// Fail transitions a Processing record to Failed, freezing progress at its
// last checkpoint and recording the failure reason.
func (r *Record) Fail(message string) error {
	if r.Status != StatusProcessing {
		return fmt.Errorf("%w: cannot fail from %s", ErrInvalidTransition, r.Status)
	}
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: failure requires an error message", ErrInvalidTransition)
	}
	r.Status = StatusFailed
	r.ErrorMessage = message
	r.OutputPath = ""
	return nil
}
