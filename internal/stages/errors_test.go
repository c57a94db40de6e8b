package stages_test

import (
	"errors"
	"fmt"
	"testing"

	"chorus/internal/stages"
)

func TestFailureClassification(t *testing.T) {
	err := stages.FetchFailure("no audio stream", nil)

	if !errors.Is(err, stages.ErrFetch) {
		t.Fatal("fetch failure should match ErrFetch")
	}
	if errors.Is(err, stages.ErrSeparation) {
		t.Fatal("fetch failure must not match ErrSeparation")
	}
	if got := err.Error(); got != "fetch: no audio stream" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestReasonIsVerbatim(t *testing.T) {
	err := stages.RenderFailure("ffmpeg: exit status 1: filter parse error", nil)
	if got := stages.Reason(err); got != "ffmpeg: exit status 1: filter parse error" {
		t.Fatalf("Reason = %q", got)
	}
}

func TestReasonSurvivesWrapping(t *testing.T) {
	inner := stages.SeparationFailure("missing stem vocals.wav", nil)
	wrapped := fmt.Errorf("stage dispatch: %w", inner)

	if got := stages.Reason(wrapped); got != "missing stem vocals.wav" {
		t.Fatalf("Reason through wrap = %q", got)
	}
	if got := stages.FailedStage(wrapped); got != stages.StageSeparate {
		t.Fatalf("FailedStage through wrap = %q", got)
	}
}

func TestFailureUnwrapsCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := stages.FetchFailure("yt-dlp failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("failure should unwrap to its cause")
	}
}

func TestExternalToolErrorClassification(t *testing.T) {
	cause := errors.New("exit status 1")
	err := stages.ExternalToolError("ffmpeg", cause, "  Unknown encoder 'libx265'\n")

	if !errors.Is(err, stages.ErrExternalTool) {
		t.Fatal("tool error should match ErrExternalTool")
	}
	if !errors.Is(err, cause) {
		t.Fatal("tool error should unwrap to its cause")
	}
	if got := err.Error(); got != "ffmpeg: exit status 1: Unknown encoder 'libx265'" {
		t.Fatalf("Error() = %q", got)
	}

	bare := stages.ExternalToolError("yt-dlp", cause, "")
	if got := bare.Error(); got != "yt-dlp: exit status 1" {
		t.Fatalf("Error() without output = %q", got)
	}
}

func TestReasonForPlainError(t *testing.T) {
	if got := stages.Reason(errors.New("plain")); got != "" {
		t.Fatalf("Reason for plain error = %q, want empty", got)
	}
	if got := stages.FailedStage(errors.New("plain")); got != "" {
		t.Fatalf("FailedStage for plain error = %q, want empty", got)
	}
}
