package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"chorus/internal/config"
)

// Store manages job persistence backed by SQLite. It exclusively owns the
// durable copy of every record; callers hold working copies and persist them
// through Update, which enforces optimistic concurrency.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Create inserts a new pending job for the given source URL, capturing the
// serialized options verbatim. The store assigns the id.
func (s *Store) Create(ctx context.Context, sourceURL, optionsJSON string) (*Record, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return nil, errors.New("source url is required")
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (source_url, status, progress, options_json, created_at, updated_at, revision)
         VALUES (?, ?, ?, ?, ?, ?, 0)`,
		sourceURL,
		StatusPending,
		0,
		nullableString(optionsJSON),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a job record by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM jobs WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return record, nil
}

// Update persists changes to an existing record. The write only lands when the
// stored revision still matches the one the record was read at; otherwise
// ErrConcurrentModification is returned and the caller must re-read.
func (s *Store) Update(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	record.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, progress = ?, error_message = ?, output_path = ?,
             updated_at = ?, revision = revision + 1
         WHERE id = ? AND revision = ?`,
		record.Status,
		record.Progress,
		nullableString(record.ErrorMessage),
		nullableString(record.OutputPath),
		record.UpdatedAt.Format(time.RFC3339Nano),
		record.ID,
		record.revision,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		current, lookupErr := s.GetByID(ctx, record.ID)
		if lookupErr != nil {
			return lookupErr
		}
		if current == nil {
			return fmt.Errorf("update job %d: %w", record.ID, ErrNotFound)
		}
		return fmt.Errorf("update job %d: %w", record.ID, ErrConcurrentModification)
	}
	record.revision++
	return nil
}

// List returns a page of job records ordered by creation time descending,
// along with the total record count.
func (s *Store) List(ctx context.Context, offset, limit int) ([]*Record, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM jobs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM jobs ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	return records, total, rows.Err()
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates job state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusProcessing:
			health.Processing += count
		case StatusCompleted:
			health.Completed += count
		case StatusFailed:
			health.Failed += count
		}
	}
	return health, nil
}

// FailInterrupted marks jobs left in Processing as failed with the given
// reason. Run once at daemon startup: a job found mid-flight after a restart
// has lost its executor and will never finish on its own.
func (s *Store) FailInterrupted(ctx context.Context, reason string) (int64, error) {
	if strings.TrimSpace(reason) == "" {
		reason = "processing interrupted"
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, error_message = ?, updated_at = ?, revision = revision + 1
         WHERE status = ?`,
		StatusFailed,
		reason,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted jobs: %w", err)
	}
	return res.RowsAffected()
}

// Ping verifies the database connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("job database connection unavailable")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

const recordColumns = "id, source_url, status, progress, error_message, output_path, options_json, created_at, updated_at, revision"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           int64
		sourceURL    string
		statusStr    string
		progress     int
		errorMessage sql.NullString
		outputPath   sql.NullString
		optionsJSON  sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		revision     int64
	)

	if err := scanner.Scan(
		&id,
		&sourceURL,
		&statusStr,
		&progress,
		&errorMessage,
		&outputPath,
		&optionsJSON,
		&createdRaw,
		&updatedRaw,
		&revision,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:           id,
		SourceURL:    sourceURL,
		Status:       Status(statusStr),
		Progress:     progress,
		ErrorMessage: errorMessage.String,
		OutputPath:   outputPath.String,
		OptionsJSON:  optionsJSON.String,
		revision:     revision,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
