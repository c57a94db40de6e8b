package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"chorus/internal/jobs"
)

// ErrInvalidRequest marks submit payloads rejected before any record is
// created.
var ErrInvalidRequest = errors.New("invalid request")

// DefaultPageSize bounds list responses when the caller does not choose one.
const DefaultPageSize = 20

// MaxPageSize caps the page size a caller may request.
const MaxPageSize = 100

// Launcher schedules a background execution for a persisted job.
type Launcher interface {
	Launch(jobID int64)
}

// JobStore abstracts the persistence interactions the facade needs.
type JobStore interface {
	Create(ctx context.Context, sourceURL, optionsJSON string) (*jobs.Record, error)
	GetByID(ctx context.Context, id int64) (*jobs.Record, error)
	List(ctx context.Context, offset, limit int) ([]*jobs.Record, int, error)
	Health(ctx context.Context) (jobs.HealthSummary, error)
}

// JobService exposes job operations returning API DTOs. Submissions are
// validated before anything is persisted, so a rejected request leaves no
// record behind.
type JobService struct {
	store    JobStore
	launcher Launcher
}

// NewJobService constructs a JobService around the provided store and
// launcher.
func NewJobService(store JobStore, launcher Launcher) *JobService {
	if store == nil {
		return nil
	}
	return &JobService{store: store, launcher: launcher}
}

// Submit validates the request, persists a pending job, and schedules its
// execution. It returns once the record is durable; the pipeline runs in the
// background.
func (s *JobService) Submit(ctx context.Context, req SubmitRequest) (Job, error) {
	if err := validateSubmit(req); err != nil {
		return Job{}, err
	}

	opts := jobs.DefaultOptions()
	opts.Artist = strings.TrimSpace(req.Artist)
	opts.Title = strings.TrimSpace(req.Title)
	if req.IncludeBackgroundVocals != nil {
		opts.IncludeBackgroundVocals = *req.IncludeBackgroundVocals
	}
	if req.VocalsVolume != nil {
		opts.VocalsVolume = *req.VocalsVolume
	}

	optionsJSON, err := jobs.EncodeOptions(opts)
	if err != nil {
		return Job{}, fmt.Errorf("encode options: %w", err)
	}

	record, err := s.store.Create(ctx, strings.TrimSpace(req.SourceURL), optionsJSON)
	if err != nil {
		return Job{}, err
	}
	if s.launcher != nil {
		s.launcher.Launch(record.ID)
	}
	return FromRecord(record), nil
}

// Describe fetches a single job. Returns nil when absent.
func (s *JobService) Describe(ctx context.Context, id int64) (*Job, error) {
	record, err := s.store.GetByID(ctx, id)
	if err != nil || record == nil {
		return nil, err
	}
	dto := FromRecord(record)
	return &dto, nil
}

// OutputPath resolves the rendered artifact for a completed job. It reports
// jobs.ErrNotFound for unknown ids and ErrInvalidRequest for jobs that have
// not completed.
func (s *JobService) OutputPath(ctx context.Context, id int64) (string, error) {
	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", jobs.ErrNotFound
	}
	if record.Status != jobs.StatusCompleted || record.OutputPath == "" {
		return "", fmt.Errorf("%w: job %d is not completed", ErrInvalidRequest, id)
	}
	return record.OutputPath, nil
}

// List returns one page of jobs, newest first. Page numbering starts at 1.
func (s *JobService) List(ctx context.Context, page, pageSize int) (JobListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	records, total, err := s.store.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return JobListResponse{}, err
	}

	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	return JobListResponse{
		Jobs:       FromRecords(records),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Health returns job counts by status.
func (s *JobService) Health(ctx context.Context) (HealthCounts, error) {
	health, err := s.store.Health(ctx)
	if err != nil {
		return HealthCounts{}, err
	}
	return FromHealth(health), nil
}

// validateSubmit rejects malformed submissions before any record exists.
func validateSubmit(req SubmitRequest) error {
	source := strings.TrimSpace(req.SourceURL)
	if source == "" {
		return fmt.Errorf("%w: sourceUrl is required", ErrInvalidRequest)
	}
	parsed, err := url.Parse(source)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: sourceUrl must be an absolute URL", ErrInvalidRequest)
	}
	if req.VocalsVolume != nil && (*req.VocalsVolume < 0 || *req.VocalsVolume > 1) {
		return fmt.Errorf("%w: vocalsVolume must be between 0 and 1", ErrInvalidRequest)
	}
	return nil
}
