package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"chorus/internal/jobs"
	"chorus/internal/logging"
	"chorus/internal/stages"
)

// Checkpoints persisted after each completed stage. The gaps leave room for
// finer-grained reporting later without reordering existing records.
const (
	CheckpointFetch    = 10
	CheckpointSeparate = 30
	CheckpointLyrics   = 50
	CheckpointRender   = 90
	CheckpointDone     = 100
)

// ErrAlreadyRunning is returned when an execution is requested for a job id
// that already has one in flight in this process.
var ErrAlreadyRunning = errors.New("job already running")

// Executor runs the full stage sequence for one job. Safe for concurrent use;
// per-id exclusivity is enforced by the in-flight set plus the Pending status
// gate on the record itself.
type Executor struct {
	store     *jobs.Store
	fetcher   stages.Fetcher
	separator stages.Separator
	lyrics    stages.LyricsAcquirer
	renderer  stages.Renderer
	workDir   string
	logger    *slog.Logger

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// NewExecutor wires an executor over the given store and stage collaborators.
// Job scratch space lives under workDir, one directory per job id.
func NewExecutor(
	store *jobs.Store,
	fetcher stages.Fetcher,
	separator stages.Separator,
	lyrics stages.LyricsAcquirer,
	renderer stages.Renderer,
	workDir string,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		store:     store,
		fetcher:   fetcher,
		separator: separator,
		lyrics:    lyrics,
		renderer:  renderer,
		workDir:   workDir,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		inFlight:  make(map[int64]struct{}),
	}
}

// Run executes every stage for jobID and records the terminal outcome.
// It returns an error only for dispatch problems (unknown id, duplicate run);
// stage failures are recorded on the job and reported as nil, since by then
// the outcome has been fully captured.
func (e *Executor) Run(ctx context.Context, jobID int64) error {
	if !e.acquire(jobID) {
		return fmt.Errorf("%w: id %d", ErrAlreadyRunning, jobID)
	}
	defer e.release(jobID)

	record, err := e.store.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %d: %w", jobID, err)
	}
	if record == nil {
		return fmt.Errorf("load job %d: %w", jobID, jobs.ErrNotFound)
	}

	if err := record.BeginProcessing(); err != nil {
		return fmt.Errorf("job %d: %w", jobID, err)
	}
	if err := e.store.Update(ctx, record); err != nil {
		return fmt.Errorf("job %d: mark processing: %w", jobID, err)
	}

	ctx = stages.WithJobID(ctx, jobID)
	ctx = stages.WithCorrelationID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_started"),
		logging.String("source_url", record.SourceURL))

	jobDir := filepath.Join(e.workDir, strconv.FormatInt(jobID, 10))
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		e.fail(ctx, record, stages.FetchFailure(fmt.Sprintf("create job dir: %v", err), err))
		return nil
	}

	opts := jobs.ParseOptions(record.OptionsJSON)

	fetchCtx := stages.WithStage(ctx, stages.StageFetch)
	fetched, err := e.fetcher.Fetch(fetchCtx, record.SourceURL, jobDir)
	if err != nil {
		e.fail(fetchCtx, record, err)
		return nil
	}
	e.advance(fetchCtx, record, CheckpointFetch)

	sepCtx := stages.WithStage(ctx, stages.StageSeparate)
	separated, err := e.separator.Separate(sepCtx, fetched.AssetPath, jobDir)
	if err != nil {
		e.fail(sepCtx, record, err)
		return nil
	}
	e.advance(sepCtx, record, CheckpointSeparate)

	lyricsCtx := stages.WithStage(ctx, stages.StageLyrics)
	transcript := e.lyrics.Acquire(lyricsCtx, stages.Hints{Artist: opts.Artist, Title: opts.Title}, separated.VocalsPath)
	e.advance(lyricsCtx, record, CheckpointLyrics)

	renderCtx := stages.WithStage(ctx, stages.StageRender)
	outputPath, err := e.renderer.Render(renderCtx, stages.RenderInput{
		JobKey:           strconv.FormatInt(jobID, 10),
		JobDir:           jobDir,
		AssetPath:        fetched.AssetPath,
		InstrumentalPath: separated.InstrumentalPath,
		VocalsPath:       separated.VocalsPath,
		Transcript:       transcript,
		Options: stages.RenderOptions{
			IncludeBackgroundVocals: opts.IncludeBackgroundVocals,
			VocalsVolume:            opts.VocalsVolume,
		},
	})
	if err != nil {
		e.fail(renderCtx, record, err)
		return nil
	}
	e.advance(renderCtx, record, CheckpointRender)

	if err := record.Complete(outputPath); err != nil {
		logger.Error("completion rejected", logging.Error(err))
		return nil
	}
	if err := e.store.Update(ctx, record); err != nil {
		logger.Error("persist completion", logging.Error(err))
		return nil
	}
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_completed"),
		logging.String("output_path", outputPath))
	return nil
}

// Running reports whether an execution for jobID is in flight in this
// process.
func (e *Executor) Running(jobID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inFlight[jobID]
	return ok
}

func (e *Executor) acquire(jobID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.inFlight[jobID]; ok {
		return false
	}
	e.inFlight[jobID] = struct{}{}
	return true
}

func (e *Executor) release(jobID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, jobID)
}

// advance persists a checkpoint. A rejected update (regression or terminal
// record) is logged loudly and skipped rather than applied; the run itself
// continues since the stage work already succeeded.
func (e *Executor) advance(ctx context.Context, record *jobs.Record, progress int) {
	logger := logging.WithContext(ctx, e.logger)
	if err := record.AdvanceProgress(progress); err != nil {
		logger.Warn("checkpoint rejected",
			logging.Int("progress", progress),
			logging.Error(err))
		return
	}
	if err := e.store.Update(ctx, record); err != nil {
		logger.Error("persist checkpoint",
			logging.Int("progress", progress),
			logging.Error(err))
		return
	}
	logger.Info("checkpoint recorded", logging.Int("progress", progress))
}

// fail records a stage failure on the job. The reason stored is the stage's
// own message, verbatim, so operators see exactly what the tool reported.
func (e *Executor) fail(ctx context.Context, record *jobs.Record, cause error) {
	logger := logging.WithContext(ctx, e.logger)
	reason := stages.Reason(cause)
	if reason == "" {
		reason = cause.Error()
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "stage_failed"),
		logging.String("reason", reason),
		logging.Error(cause),
	}
	if errors.Is(cause, stages.ErrExternalTool) {
		attrs = append(attrs, logging.String(logging.FieldErrorHint,
			"verify the stage's external tool is installed and on PATH"))
	}
	logger.LogAttrs(ctx, slog.LevelError, "stage failed", attrs...)

	if err := record.Fail(reason); err != nil {
		logger.Error("failure transition rejected", logging.Error(err))
		return
	}
	if err := e.store.Update(ctx, record); err != nil {
		logger.Error("persist failure", logging.Error(err))
	}
}
