package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"chorus/internal/jobs"
	"chorus/internal/logging"
	"chorus/internal/pipeline"
	"chorus/internal/stages"
	"chorus/internal/testsupport"
)

type fakeFetcher struct {
	fn func(ctx context.Context, sourceURL, jobDir string) (stages.FetchResult, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, sourceURL, jobDir string) (stages.FetchResult, error) {
	if f.fn != nil {
		return f.fn(ctx, sourceURL, jobDir)
	}
	return stages.FetchResult{AssetPath: filepath.Join(jobDir, "source.wav")}, nil
}

type fakeSeparator struct {
	fn func(ctx context.Context, assetPath, jobDir string) (stages.SeparationResult, error)
}

func (f *fakeSeparator) Separate(ctx context.Context, assetPath, jobDir string) (stages.SeparationResult, error) {
	if f.fn != nil {
		return f.fn(ctx, assetPath, jobDir)
	}
	return stages.SeparationResult{
		InstrumentalPath: filepath.Join(jobDir, "instrumental.wav"),
		VocalsPath:       filepath.Join(jobDir, "vocals.wav"),
	}, nil
}

type fakeLyrics struct {
	fn func(ctx context.Context, hints stages.Hints, vocalsPath string) stages.Transcript
}

func (f *fakeLyrics) Acquire(ctx context.Context, hints stages.Hints, vocalsPath string) stages.Transcript {
	if f.fn != nil {
		return f.fn(ctx, hints, vocalsPath)
	}
	return stages.Transcript{}
}

type fakeRenderer struct {
	fn func(ctx context.Context, in stages.RenderInput) (string, error)
}

func (f *fakeRenderer) Render(ctx context.Context, in stages.RenderInput) (string, error) {
	if f.fn != nil {
		return f.fn(ctx, in)
	}
	return filepath.Join(in.JobDir, in.JobKey+".mp4"), nil
}

type harness struct {
	store     *jobs.Store
	fetcher   *fakeFetcher
	separator *fakeSeparator
	lyrics    *fakeLyrics
	renderer  *fakeRenderer
	executor  *pipeline.Executor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	h := &harness{
		store:     testsupport.MustOpenStore(t, cfg),
		fetcher:   &fakeFetcher{},
		separator: &fakeSeparator{},
		lyrics:    &fakeLyrics{},
		renderer:  &fakeRenderer{},
	}
	h.executor = pipeline.NewExecutor(
		h.store, h.fetcher, h.separator, h.lyrics, h.renderer,
		cfg.Paths.WorkDir, logging.NewNop())
	return h
}

func (h *harness) mustGet(t *testing.T, id int64) *jobs.Record {
	t.Helper()
	record, err := h.store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if record == nil {
		t.Fatalf("record %d missing", id)
	}
	return record
}

func TestRunCompletesJobThroughAllStages(t *testing.T) {
	h := newHarness(t)
	job := testsupport.NewJob(t, h.store, "https://example.com/v", "")

	var seen []int
	observe := func(ctx context.Context) {
		record := h.mustGet(t, job.ID)
		seen = append(seen, record.Progress)
	}
	h.separator.fn = func(ctx context.Context, assetPath, jobDir string) (stages.SeparationResult, error) {
		observe(ctx)
		return stages.SeparationResult{
			InstrumentalPath: filepath.Join(jobDir, "instrumental.wav"),
			VocalsPath:       filepath.Join(jobDir, "vocals.wav"),
		}, nil
	}
	h.lyrics.fn = func(ctx context.Context, hints stages.Hints, vocalsPath string) stages.Transcript {
		observe(ctx)
		return stages.Transcript{}
	}
	h.renderer.fn = func(ctx context.Context, in stages.RenderInput) (string, error) {
		observe(ctx)
		return "/output/final.mp4", nil
	}

	if err := h.executor.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	record := h.mustGet(t, job.ID)
	if record.Status != jobs.StatusCompleted {
		t.Fatalf("status = %s, want %s", record.Status, jobs.StatusCompleted)
	}
	if record.Progress != 100 {
		t.Fatalf("progress = %d, want 100", record.Progress)
	}
	if record.OutputPath != "/output/final.mp4" {
		t.Fatalf("output path = %q", record.OutputPath)
	}
	if record.ErrorMessage != "" {
		t.Fatalf("error message should be empty, got %q", record.ErrorMessage)
	}

	want := []int{pipeline.CheckpointFetch, pipeline.CheckpointSeparate, pipeline.CheckpointLyrics}
	if len(seen) != len(want) {
		t.Fatalf("observed checkpoints %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("observed checkpoints %v, want %v", seen, want)
		}
	}
}

func TestRunRecordsFetchFailureVerbatim(t *testing.T) {
	h := newHarness(t)
	job := testsupport.NewJob(t, h.store, "https://example.com/v", "")

	h.fetcher.fn = func(ctx context.Context, sourceURL, jobDir string) (stages.FetchResult, error) {
		return stages.FetchResult{}, stages.FetchFailure("no audio stream", nil)
	}

	if err := h.executor.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	record := h.mustGet(t, job.ID)
	if record.Status != jobs.StatusFailed {
		t.Fatalf("status = %s, want %s", record.Status, jobs.StatusFailed)
	}
	if record.ErrorMessage != "no audio stream" {
		t.Fatalf("error message = %q, want %q", record.ErrorMessage, "no audio stream")
	}
	if record.Progress != 0 {
		t.Fatalf("progress = %d, want frozen at 0", record.Progress)
	}
	if record.OutputPath != "" {
		t.Fatalf("output path should be empty, got %q", record.OutputPath)
	}
}

func TestRunSeparationFailureSkipsLaterStages(t *testing.T) {
	h := newHarness(t)
	job := testsupport.NewJob(t, h.store, "https://example.com/v", "")

	h.separator.fn = func(ctx context.Context, assetPath, jobDir string) (stages.SeparationResult, error) {
		return stages.SeparationResult{}, stages.SeparationFailure("no vocals detected", nil)
	}
	var lyricsCalled, renderCalled bool
	h.lyrics.fn = func(ctx context.Context, hints stages.Hints, vocalsPath string) stages.Transcript {
		lyricsCalled = true
		return stages.Transcript{}
	}
	h.renderer.fn = func(ctx context.Context, in stages.RenderInput) (string, error) {
		renderCalled = true
		return "/output/final.mp4", nil
	}

	if err := h.executor.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	record := h.mustGet(t, job.ID)
	if record.Status != jobs.StatusFailed {
		t.Fatalf("status = %s, want %s", record.Status, jobs.StatusFailed)
	}
	if record.Progress != pipeline.CheckpointFetch {
		t.Fatalf("progress = %d, want frozen at %d", record.Progress, pipeline.CheckpointFetch)
	}
	if record.ErrorMessage != "no vocals detected" {
		t.Fatalf("error message = %q, want %q", record.ErrorMessage, "no vocals detected")
	}
	if lyricsCalled {
		t.Fatal("lyrics stage ran after separation failure")
	}
	if renderCalled {
		t.Fatal("render stage ran after separation failure")
	}
}

func TestRunFreezesProgressAtLastCheckpointOnRenderFailure(t *testing.T) {
	h := newHarness(t)
	job := testsupport.NewJob(t, h.store, "https://example.com/v", "")

	h.renderer.fn = func(ctx context.Context, in stages.RenderInput) (string, error) {
		return "", stages.RenderFailure("ffmpeg: exit status 1", nil)
	}

	if err := h.executor.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	record := h.mustGet(t, job.ID)
	if record.Status != jobs.StatusFailed {
		t.Fatalf("status = %s, want %s", record.Status, jobs.StatusFailed)
	}
	if record.Progress != pipeline.CheckpointLyrics {
		t.Fatalf("progress = %d, want %d", record.Progress, pipeline.CheckpointLyrics)
	}
	if record.ErrorMessage != "ffmpeg: exit status 1" {
		t.Fatalf("error message = %q", record.ErrorMessage)
	}
}

func TestRunLogsEventTypeAndToolHintOnFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	fetcher := &fakeFetcher{fn: func(ctx context.Context, sourceURL, jobDir string) (stages.FetchResult, error) {
		cause := stages.ExternalToolError("yt-dlp", errors.New("exit status 1"), "")
		return stages.FetchResult{}, stages.FetchFailure(cause.Error(), cause)
	}}
	executor := pipeline.NewExecutor(
		store, fetcher, &fakeSeparator{}, &fakeLyrics{}, &fakeRenderer{},
		cfg.Paths.WorkDir, logger)

	job := testsupport.NewJob(t, store, "https://example.com/v", "")
	if err := executor.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"event_type":"job_started"`) {
		t.Fatalf("missing job_started event: %s", out)
	}
	if !strings.Contains(out, `"event_type":"stage_failed"`) {
		t.Fatalf("missing stage_failed event: %s", out)
	}
	if !strings.Contains(out, `"error_hint":"verify the stage's external tool is installed and on PATH"`) {
		t.Fatalf("missing error hint for tool failure: %s", out)
	}
}

func TestRunPassesOptionsToStages(t *testing.T) {
	h := newHarness(t)
	optionsJSON, err := jobs.EncodeOptions(jobs.Options{
		Artist:                  "Daft Punk",
		Title:                   "Harder",
		IncludeBackgroundVocals: true,
		VocalsVolume:            0.4,
	})
	if err != nil {
		t.Fatalf("EncodeOptions: %v", err)
	}
	job := testsupport.NewJob(t, h.store, "https://example.com/v", optionsJSON)

	var gotHints stages.Hints
	h.lyrics.fn = func(ctx context.Context, hints stages.Hints, vocalsPath string) stages.Transcript {
		gotHints = hints
		return stages.Transcript{Lines: []stages.LyricLine{{Text: "line"}}}
	}
	var gotInput stages.RenderInput
	h.renderer.fn = func(ctx context.Context, in stages.RenderInput) (string, error) {
		gotInput = in
		return "/output/final.mp4", nil
	}

	if err := h.executor.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if gotHints.Artist != "Daft Punk" || gotHints.Title != "Harder" {
		t.Fatalf("hints = %+v", gotHints)
	}
	if !gotInput.Options.IncludeBackgroundVocals {
		t.Fatal("IncludeBackgroundVocals not plumbed to renderer")
	}
	if gotInput.Options.VocalsVolume != 0.4 {
		t.Fatalf("VocalsVolume = %v, want 0.4", gotInput.Options.VocalsVolume)
	}
	if len(gotInput.Transcript.Lines) != 1 {
		t.Fatalf("transcript not plumbed: %+v", gotInput.Transcript)
	}
}

func TestRunRejectsDuplicateExecution(t *testing.T) {
	h := newHarness(t)
	job := testsupport.NewJob(t, h.store, "https://example.com/v", "")

	started := make(chan struct{})
	release := make(chan struct{})
	h.fetcher.fn = func(ctx context.Context, sourceURL, jobDir string) (stages.FetchResult, error) {
		close(started)
		<-release
		return stages.FetchResult{AssetPath: filepath.Join(jobDir, "source.wav")}, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = h.executor.Run(context.Background(), job.ID)
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first execution did not start")
	}

	err := h.executor.Run(context.Background(), job.ID)
	if !errors.Is(err, pipeline.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	close(release)
	wg.Wait()
}

func TestRunRefusesNonPendingRecord(t *testing.T) {
	h := newHarness(t)
	job := testsupport.NewJob(t, h.store, "https://example.com/v", "")

	if err := h.executor.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("first run: %v", err)
	}

	err := h.executor.Run(context.Background(), job.ID)
	if !errors.Is(err, jobs.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for completed record, got %v", err)
	}
}

func TestRunUnknownJobID(t *testing.T) {
	h := newHarness(t)
	err := h.executor.Run(context.Background(), 9999)
	if !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRunEmptyTranscriptStillCompletes(t *testing.T) {
	h := newHarness(t)
	job := testsupport.NewJob(t, h.store, "https://example.com/v", "")

	h.lyrics.fn = func(ctx context.Context, hints stages.Hints, vocalsPath string) stages.Transcript {
		return stages.Transcript{}
	}

	if err := h.executor.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	record := h.mustGet(t, job.ID)
	if record.Status != jobs.StatusCompleted {
		t.Fatalf("status = %s, want completed with empty transcript", record.Status)
	}
}
