package stages

import (
	"errors"
	"fmt"
	"strings"
)

// Classification markers for stage failures. Stage implementations attach one
// of these so callers can classify with errors.Is without string matching.
var (
	ErrFetch        = errors.New("fetch error")
	ErrSeparation   = errors.New("separation error")
	ErrRender       = errors.New("render error")
	ErrExternalTool = errors.New("external tool error")
)

// Failure is a stage error carrying the stage name and the reason recorded
// verbatim onto a failed job record.
type Failure struct {
	Stage  string
	Reason string

	marker error
	cause  error
}

func (f *Failure) Error() string {
	if f.Stage == "" {
		return f.Reason
	}
	return fmt.Sprintf("%s: %s", f.Stage, f.Reason)
}

func (f *Failure) Unwrap() []error {
	out := make([]error, 0, 2)
	if f.marker != nil {
		out = append(out, f.marker)
	}
	if f.cause != nil {
		out = append(out, f.cause)
	}
	return out
}

// NewFailure builds a stage failure. The reason should read as a user-facing
// explanation; cause preserves the underlying error for logs.
func NewFailure(marker error, stage, reason string, cause error) *Failure {
	reason = strings.TrimSpace(reason)
	if reason == "" && cause != nil {
		reason = cause.Error()
	}
	if reason == "" {
		reason = "stage failed"
	}
	return &Failure{Stage: stage, Reason: reason, marker: marker, cause: cause}
}

// FetchFailure tags a failure from the fetch stage.
func FetchFailure(reason string, cause error) error {
	return NewFailure(ErrFetch, StageFetch, reason, cause)
}

// SeparationFailure tags a failure from the separation stage.
func SeparationFailure(reason string, cause error) error {
	return NewFailure(ErrSeparation, StageSeparate, reason, cause)
}

// RenderFailure tags a failure from the render stage.
func RenderFailure(reason string, cause error) error {
	return NewFailure(ErrRender, StageRender, reason, cause)
}

// toolError carries the message of a failed collaborator command verbatim
// while staying classifiable as ErrExternalTool.
type toolError struct {
	msg   string
	cause error
}

func (e *toolError) Error() string { return e.msg }

func (e *toolError) Unwrap() []error {
	return []error{ErrExternalTool, e.cause}
}

// ExternalToolError wraps a failed collaborator command, folding its combined
// output into the message so operators see what the tool reported.
func ExternalToolError(name string, cause error, output string) error {
	msg := fmt.Sprintf("%s: %v", name, cause)
	if trimmed := strings.TrimSpace(output); trimmed != "" {
		msg = fmt.Sprintf("%s: %s", msg, trimmed)
	}
	return &toolError{msg: msg, cause: cause}
}

// Reason extracts the verbatim failure reason to record on a failed job, or
// "" when the error is not a stage Failure.
func Reason(err error) string {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Reason
	}
	return ""
}

// FailedStage names the stage an error originated from, or "" when unknown.
func FailedStage(err error) string {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Stage
	}
	return ""
}
