package logging_test

import (
	"context"
	"log/slog"
	"testing"

	"chorus/internal/logging"
	"chorus/internal/stages"
)

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	if fields := logging.ContextFields(ctx); len(fields) != 0 {
		t.Fatalf("empty context should yield no fields, got %v", fields)
	}

	ctx = stages.WithJobID(ctx, 42)
	ctx = stages.WithStage(ctx, stages.StageFetch)
	ctx = stages.WithCorrelationID(ctx, "run-1")

	fields := logging.ContextFields(ctx)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %v", fields)
	}
	byKey := map[string]slog.Attr{}
	for _, field := range fields {
		byKey[field.Key] = field
	}
	if got := byKey[logging.FieldJobID].Value.Int64(); got != 42 {
		t.Fatalf("job id field = %d", got)
	}
	if got := byKey[logging.FieldStage].Value.String(); got != stages.StageFetch {
		t.Fatalf("stage field = %q", got)
	}
	if got := byKey[logging.FieldCorrelationID].Value.String(); got != "run-1" {
		t.Fatalf("correlation field = %q", got)
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected usable logger")
	}
	logger.Info("no-op")
}
