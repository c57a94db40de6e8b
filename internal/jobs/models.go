package jobs

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle state of a job record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// HealthSummary describes aggregated job counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Record is the sole persistent entity: one karaoke generation request tracked
// end to end. SourceURL and OptionsJSON are fixed at creation; only Status,
// Progress, ErrorMessage, OutputPath, and UpdatedAt mutate afterwards.
type Record struct {
	ID           int64
	SourceURL    string
	Status       Status
	Progress     int
	ErrorMessage string
	OutputPath   string
	OptionsJSON  string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// revision backs the store's optimistic concurrency check.
	revision int64
}

// IsTerminal reports whether the record has reached a terminal state.
func (r *Record) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// Options captures the caller-supplied generation parameters serialized
// verbatim into a record at submit time.
type Options struct {
	Artist                  string  `json:"artist,omitempty"`
	Title                   string  `json:"title,omitempty"`
	IncludeBackgroundVocals bool    `json:"includeBackgroundVocals"`
	VocalsVolume            float64 `json:"vocalsVolume"`
}

// DefaultOptions returns the generation parameters used when a submit request
// leaves them unset.
func DefaultOptions() Options {
	return Options{VocalsVolume: 0.3}
}

// ParseOptions decodes a record's serialized options. Malformed or empty
// payloads fall back to defaults so an old record still renders.
func ParseOptions(raw string) Options {
	opts := DefaultOptions()
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return opts
	}
	if err := json.Unmarshal([]byte(trimmed), &opts); err != nil {
		return DefaultOptions()
	}
	if opts.VocalsVolume < 0 {
		opts.VocalsVolume = 0
	}
	if opts.VocalsVolume > 1 {
		opts.VocalsVolume = 1
	}
	return opts
}

// EncodeOptions serializes generation parameters for storage on a record.
func EncodeOptions(opts Options) (string, error) {
	data, err := json.Marshal(opts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
