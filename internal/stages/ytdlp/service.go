package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"chorus/internal/stages"
)

// AudioBaseName is the base name yt-dlp writes the extracted audio under.
const AudioBaseName = "source"

// Service downloads audio from a source URL using yt-dlp.
type Service struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a fetcher that shells out to the given yt-dlp binary.
func NewService(binary string) *Service {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Service{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Fetch downloads the source URL and extracts its audio stream as WAV into
// jobDir. It returns the path of the extracted asset.
func (s *Service) Fetch(ctx context.Context, sourceURL, jobDir string) (stages.FetchResult, error) {
	var result stages.FetchResult

	if sourceURL == "" {
		return result, stages.FetchFailure("source URL required", nil)
	}
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return result, stages.FetchFailure(fmt.Sprintf("ensure job dir: %v", err), err)
	}

	outputTemplate := filepath.Join(jobDir, AudioBaseName+".%(ext)s")
	args := []string{
		"-x",
		"--audio-format", "wav",
		"--audio-quality", "0",
		"--no-playlist",
		"-o", outputTemplate,
		sourceURL,
	}
	if err := s.run(ctx, s.binary, args...); err != nil {
		return result, stages.FetchFailure(err.Error(), err)
	}

	assetPath, err := locateAsset(jobDir)
	if err != nil {
		return result, stages.FetchFailure(err.Error(), err)
	}
	result.AssetPath = assetPath
	return result, nil
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return stages.ExternalToolError(name, err, string(output))
	}
	return nil
}

// locateAsset finds the extracted audio file under jobDir. yt-dlp normally
// honors the output template, but the final extension depends on the
// post-processor, so match on the base name.
func locateAsset(jobDir string) (string, error) {
	preferred := filepath.Join(jobDir, AudioBaseName+".wav")
	if _, err := os.Stat(preferred); err == nil {
		return preferred, nil
	}

	entries, err := os.ReadDir(jobDir)
	if err != nil {
		return "", fmt.Errorf("read job dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, AudioBaseName+".") {
			return filepath.Join(jobDir, name), nil
		}
	}
	return "", fmt.Errorf("no audio stream")
}
