package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"chorus/internal/stages"
)

// UVXCommand is the launcher used to run WhisperX without a local install.
const UVXCommand = "uvx"

// DefaultWhisperModel balances transcription quality against CPU cost.
const DefaultWhisperModel = "small"

// Transcriber produces a timed transcript from a vocal stem using WhisperX.
type Transcriber struct {
	uvxBinary     string
	model         string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewTranscriber creates a transcriber running WhisperX through uvx.
func NewTranscriber(uvxBinary, model string) *Transcriber {
	if uvxBinary == "" {
		uvxBinary = UVXCommand
	}
	if model == "" {
		model = DefaultWhisperModel
	}
	return &Transcriber{uvxBinary: uvxBinary, model: model}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Transcriber) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	t.commandRunner = runner
}

// whisperSegment is one transcribed span in the WhisperX JSON output.
type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperPayload struct {
	Segments []whisperSegment `json:"segments"`
}

// Transcribe runs WhisperX against vocalsPath and parses its JSON output
// into a timed transcript.
func (t *Transcriber) Transcribe(ctx context.Context, vocalsPath string) (stages.Transcript, error) {
	var transcript stages.Transcript

	if vocalsPath == "" {
		return transcript, fmt.Errorf("transcribe: vocals path required")
	}
	outputDir := filepath.Join(filepath.Dir(vocalsPath), "transcript")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return transcript, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	args := []string{
		"whisperx",
		vocalsPath,
		"--model", t.model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--device", "cpu",
		"--compute_type", "int8",
	}
	if err := t.run(ctx, t.uvxBinary, args...); err != nil {
		return transcript, fmt.Errorf("whisperx: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(vocalsPath), filepath.Ext(vocalsPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	return loadTranscript(jsonPath)
}

// run executes a command, using the custom runner if set.
func (t *Transcriber) run(ctx context.Context, name string, args ...string) error {
	if t.commandRunner != nil {
		return t.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return stages.ExternalToolError(name, err, string(output))
	}
	return nil
}

// loadTranscript parses a WhisperX JSON file into timed lyric lines.
func loadTranscript(jsonPath string) (stages.Transcript, error) {
	var transcript stages.Transcript

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return transcript, fmt.Errorf("transcribe: read output: %w", err)
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return transcript, fmt.Errorf("transcribe: parse output: %w", err)
	}

	for _, seg := range payload.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		start, end := seg.Start, seg.End
		transcript.Lines = append(transcript.Lines, stages.LyricLine{
			Text:      text,
			StartTime: &start,
			EndTime:   &end,
		})
	}
	transcript.Timed = len(transcript.Lines) > 0
	return transcript, nil
}
