package api

import (
	"encoding/json"
	"fmt"

	"chorus/internal/jobs"
)

// FromRecord converts a job record to its API representation.
func FromRecord(record *jobs.Record) Job {
	if record == nil {
		return Job{}
	}

	dto := Job{
		ID:           record.ID,
		SourceURL:    record.SourceURL,
		Status:       string(record.Status),
		Progress:     record.Progress,
		ErrorMessage: record.ErrorMessage,
	}
	if record.Status == jobs.StatusCompleted && record.OutputPath != "" {
		dto.DownloadURL = fmt.Sprintf("/api/jobs/%d/download", record.ID)
	}
	if !record.CreatedAt.IsZero() {
		dto.CreatedAt = record.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !record.UpdatedAt.IsZero() {
		dto.UpdatedAt = record.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if raw := record.OptionsJSON; raw != "" {
		dto.Options = json.RawMessage(raw)
	}
	return dto
}

// FromRecords converts a slice of job records.
func FromRecords(records []*jobs.Record) []Job {
	out := make([]Job, 0, len(records))
	for _, record := range records {
		out = append(out, FromRecord(record))
	}
	return out
}

// FromHealth converts a store health summary.
func FromHealth(health jobs.HealthSummary) HealthCounts {
	return HealthCounts{
		Total:      health.Total,
		Pending:    health.Pending,
		Processing: health.Processing,
		Completed:  health.Completed,
		Failed:     health.Failed,
	}
}
