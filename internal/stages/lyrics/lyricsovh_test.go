package lyrics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chorus/internal/stages"
	"chorus/internal/stages/lyrics"
)

func TestLookupSplitsLinesAndDropsBlanks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Daft%20Punk/Harder" && r.URL.Path != "/Daft Punk/Harder" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lyrics":"Work it harder\n\nMake it better\n"}`))
	}))
	defer server.Close()

	provider := lyrics.NewLookupProvider(server.URL, time.Second)
	transcript, err := provider.Lookup(context.Background(), stages.Hints{Artist: "Daft Punk", Title: "Harder"})
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if len(transcript.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(transcript.Lines))
	}
	if transcript.Lines[0].Text != "Work it harder" || transcript.Lines[1].Text != "Make it better" {
		t.Fatalf("unexpected lines: %+v", transcript.Lines)
	}
	if transcript.Timed {
		t.Fatal("lookup transcript should not be timed")
	}
}

func TestLookupMissReturnsEmptyWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"No lyrics found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	provider := lyrics.NewLookupProvider(server.URL, time.Second)
	transcript, err := provider.Lookup(context.Background(), stages.Hints{Artist: "Nobody", Title: "Nothing"})
	if err != nil {
		t.Fatalf("miss should not error, got %v", err)
	}
	if len(transcript.Lines) != 0 {
		t.Fatalf("expected empty transcript, got %d lines", len(transcript.Lines))
	}
}

func TestLookupServerErrorIsReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := lyrics.NewLookupProvider(server.URL, time.Second)
	if _, err := provider.Lookup(context.Background(), stages.Hints{Artist: "A", Title: "B"}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestLookupSkipsIncompleteHints(t *testing.T) {
	provider := lyrics.NewLookupProvider("http://127.0.0.1:0", time.Second)
	transcript, err := provider.Lookup(context.Background(), stages.Hints{Artist: "Only Artist"})
	if err != nil {
		t.Fatalf("incomplete hints should short-circuit, got %v", err)
	}
	if len(transcript.Lines) != 0 {
		t.Fatal("expected empty transcript")
	}
}
