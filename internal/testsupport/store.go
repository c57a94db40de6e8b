package testsupport

import (
	"context"
	"testing"

	"chorus/internal/config"
	"chorus/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a pending job record for tests using the provided store.
func NewJob(t testing.TB, store *jobs.Store, sourceURL, optionsJSON string) *jobs.Record {
	t.Helper()

	record, err := store.Create(context.Background(), sourceURL, optionsJSON)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return record
}
