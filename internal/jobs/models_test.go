package jobs_test

import (
	"strings"
	"testing"

	"chorus/internal/jobs"
)

func TestParseStatus(t *testing.T) {
	for _, status := range jobs.AllStatuses() {
		parsed, ok := jobs.ParseStatus(string(status))
		if !ok || parsed != status {
			t.Fatalf("ParseStatus(%q) = %q, %v", status, parsed, ok)
		}
	}
	if _, ok := jobs.ParseStatus("queued"); ok {
		t.Fatal("unknown status should not parse")
	}
}

func TestStatusIsTerminal(t *testing.T) {
	cases := map[jobs.Status]bool{
		jobs.StatusPending:    false,
		jobs.StatusProcessing: false,
		jobs.StatusCompleted:  true,
		jobs.StatusFailed:     true,
	}
	for status, want := range cases {
		if got := status.IsTerminal(); got != want {
			t.Fatalf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestParseOptionsDefaults(t *testing.T) {
	opts := jobs.ParseOptions("")
	if opts.VocalsVolume != 0.3 {
		t.Fatalf("default vocals volume = %v", opts.VocalsVolume)
	}
	if opts.IncludeBackgroundVocals {
		t.Fatal("background vocals should default off")
	}
}

func TestParseOptionsRoundTrip(t *testing.T) {
	encoded, err := jobs.EncodeOptions(jobs.Options{
		Artist:                  "Daft Punk",
		Title:                   "Around The World",
		IncludeBackgroundVocals: true,
		VocalsVolume:            0.5,
	})
	if err != nil {
		t.Fatalf("EncodeOptions: %v", err)
	}
	if !strings.Contains(encoded, `"includeBackgroundVocals":true`) {
		t.Fatalf("unexpected encoding: %s", encoded)
	}

	opts := jobs.ParseOptions(encoded)
	if opts.Artist != "Daft Punk" || opts.Title != "Around The World" {
		t.Fatalf("hints lost: %+v", opts)
	}
	if !opts.IncludeBackgroundVocals || opts.VocalsVolume != 0.5 {
		t.Fatalf("render options lost: %+v", opts)
	}
}

func TestParseOptionsClampsVolume(t *testing.T) {
	if opts := jobs.ParseOptions(`{"vocalsVolume":2.5}`); opts.VocalsVolume != 1 {
		t.Fatalf("volume above range should clamp to 1, got %v", opts.VocalsVolume)
	}
	if opts := jobs.ParseOptions(`{"vocalsVolume":-0.5}`); opts.VocalsVolume != 0 {
		t.Fatalf("volume below range should clamp to 0, got %v", opts.VocalsVolume)
	}
}

func TestParseOptionsMalformedFallsBack(t *testing.T) {
	opts := jobs.ParseOptions("{not json")
	if opts.VocalsVolume != 0.3 || opts.Artist != "" {
		t.Fatalf("malformed payload should yield defaults, got %+v", opts)
	}
}
