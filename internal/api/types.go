package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a job record in a transport-friendly format.
type Job struct {
	ID           int64           `json:"id"`
	SourceURL    string          `json:"sourceUrl"`
	Status       string          `json:"status"`
	Progress     int             `json:"progress"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	DownloadURL  string          `json:"downloadUrl,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	UpdatedAt    string          `json:"updatedAt,omitempty"`
	Options      json.RawMessage `json:"options,omitempty"`
}

// SubmitRequest carries the parameters for a new generation job. Unset
// optional fields fall back to server defaults.
type SubmitRequest struct {
	SourceURL               string   `json:"sourceUrl"`
	Artist                  string   `json:"artist,omitempty"`
	Title                   string   `json:"title,omitempty"`
	IncludeBackgroundVocals *bool    `json:"includeBackgroundVocals,omitempty"`
	VocalsVolume            *float64 `json:"vocalsVolume,omitempty"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// JobListResponse wraps a page of jobs with pagination metadata.
type JobListResponse struct {
	Jobs       []Job `json:"jobs"`
	Total      int   `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// HealthCounts summarizes job counts by status.
type HealthCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	JobDBPath    string             `json:"jobDbPath"`
	LockFilePath string             `json:"lockFilePath"`
	Jobs         HealthCounts       `json:"jobs"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// DependencyStatus captures availability of an external tool.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
