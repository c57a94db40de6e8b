package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chorus/internal/stages"
	"chorus/internal/stages/render"
)

func renderInput(t *testing.T, jobDir string) stages.RenderInput {
	t.Helper()
	instrumental := filepath.Join(jobDir, "instrumental.wav")
	vocals := filepath.Join(jobDir, "vocals.wav")
	for _, p := range []string{instrumental, vocals} {
		if err := os.WriteFile(p, []byte("wav"), 0o644); err != nil {
			t.Fatalf("write stem: %v", err)
		}
	}
	return stages.RenderInput{
		JobKey:           "42",
		JobDir:           jobDir,
		InstrumentalPath: instrumental,
		VocalsPath:       vocals,
		Transcript: stages.Transcript{
			Lines: []stages.LyricLine{{Text: "hello"}},
		},
		Options: stages.RenderOptions{VocalsVolume: 0.3},
	}
}

func TestRenderWritesSubtitlesAndOutput(t *testing.T) {
	jobDir := t.TempDir()
	outDir := t.TempDir()
	in := renderInput(t, jobDir)

	svc := render.NewService("ffmpeg", outDir, 24, 3)
	var gotArgs []string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644)
	})

	outputPath, err := svc.Render(context.Background(), in)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if want := filepath.Join(outDir, "42.mp4"); outputPath != want {
		t.Fatalf("output path = %q, want %q", outputPath, want)
	}
	if _, err := os.Stat(filepath.Join(jobDir, render.SubtitleFileName)); err != nil {
		t.Fatalf("subtitle file missing: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "subtitles=") {
		t.Fatalf("expected subtitles filter in args: %s", joined)
	}
	if strings.Contains(joined, "amix") {
		t.Fatalf("vocals not requested, args should not mix: %s", joined)
	}
}

func TestRenderMixesBackgroundVocals(t *testing.T) {
	jobDir := t.TempDir()
	in := renderInput(t, jobDir)
	in.Options.IncludeBackgroundVocals = true
	in.Options.VocalsVolume = 0.25

	svc := render.NewService("", t.TempDir(), 0, 0)
	var gotArgs []string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644)
	})

	if _, err := svc.Render(context.Background(), in); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "volume=0.25") {
		t.Fatalf("expected vocal volume filter, got: %s", joined)
	}
	if !strings.Contains(joined, "amix=inputs=2") {
		t.Fatalf("expected amix filter, got: %s", joined)
	}
}

func TestRenderEmptyTranscriptSkipsSubtitles(t *testing.T) {
	jobDir := t.TempDir()
	in := renderInput(t, jobDir)
	in.Transcript = stages.Transcript{}

	svc := render.NewService("ffmpeg", t.TempDir(), 24, 3)
	var gotArgs []string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644)
	})

	if _, err := svc.Render(context.Background(), in); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if strings.Contains(strings.Join(gotArgs, " "), "subtitles=") {
		t.Fatal("empty transcript should not add a subtitles filter")
	}
	if _, err := os.Stat(filepath.Join(jobDir, render.SubtitleFileName)); !os.IsNotExist(err) {
		t.Fatal("no subtitle file should be written for empty transcript")
	}
}

func TestRenderCommandErrorIsRenderFailure(t *testing.T) {
	in := renderInput(t, t.TempDir())

	svc := render.NewService("ffmpeg", t.TempDir(), 24, 3)
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("ffmpeg: exit status 1")
	})

	_, err := svc.Render(context.Background(), in)
	if !errors.Is(err, stages.ErrRender) {
		t.Fatalf("expected render failure, got %v", err)
	}
	if stage := stages.FailedStage(err); stage != stages.StageRender {
		t.Fatalf("failed stage = %q", stage)
	}
}

func TestRenderMissingOutputFails(t *testing.T) {
	in := renderInput(t, t.TempDir())

	svc := render.NewService("ffmpeg", t.TempDir(), 24, 3)
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})

	if _, err := svc.Render(context.Background(), in); !errors.Is(err, stages.ErrRender) {
		t.Fatalf("expected render failure for missing output, got %v", err)
	}
}
