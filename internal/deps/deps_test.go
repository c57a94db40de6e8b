package deps

import (
	"os"
	"path/filepath"
	"testing"

	"chorus/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
}

func TestCheckBinariesEmptyCommand(t *testing.T) {
	results := CheckBinaries([]Requirement{{Name: "Unset", Command: "  "}})
	if results[0].Available {
		t.Fatal("unset command should be unavailable")
	}
	if results[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %s", results[0].Detail)
	}
}

func TestRequirementsMarkTranscriberOptional(t *testing.T) {
	cfg := config.Default()
	reqs := Requirements(&cfg)
	if len(reqs) != 4 {
		t.Fatalf("expected 4 requirements, got %d", len(reqs))
	}
	for _, req := range reqs {
		if req.Name == "uvx" && !req.Optional {
			t.Fatal("uvx should be optional")
		}
		if req.Name != "uvx" && req.Optional {
			t.Fatalf("%s should be required", req.Name)
		}
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "yt-dlp", Available: false},
		{Name: "uvx", Available: false, Optional: true},
		{Name: "ffmpeg", Available: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "yt-dlp" {
		t.Fatalf("missing = %v", missing)
	}
}
