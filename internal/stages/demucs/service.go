package demucs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"chorus/internal/stages"
)

const (
	// SeparatedDirName is the directory under the job dir holding stems.
	SeparatedDirName = "separated"

	// VocalsFileName and InstrumentalFileName are the stem files the helper
	// script is expected to produce.
	VocalsFileName       = "vocals.wav"
	InstrumentalFileName = "instrumental.wav"
)

// Service runs the Demucs separation script against a source asset.
type Service struct {
	pythonBinary  string
	scriptPath    string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a separator using the given python interpreter and
// helper script.
func NewService(pythonBinary, scriptPath string) *Service {
	if pythonBinary == "" {
		pythonBinary = "python3"
	}
	return &Service{pythonBinary: pythonBinary, scriptPath: scriptPath}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Separate splits assetPath into vocal and instrumental stems under
// jobDir/separated and returns their paths. Both stems must exist after the
// script finishes.
func (s *Service) Separate(ctx context.Context, assetPath, jobDir string) (stages.SeparationResult, error) {
	var result stages.SeparationResult

	if assetPath == "" {
		return result, stages.SeparationFailure("asset path required", nil)
	}
	if _, err := os.Stat(assetPath); err != nil {
		return result, stages.SeparationFailure(fmt.Sprintf("asset missing: %v", err), err)
	}
	outDir := filepath.Join(jobDir, SeparatedDirName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, stages.SeparationFailure(fmt.Sprintf("ensure output dir: %v", err), err)
	}

	if err := s.run(ctx, s.pythonBinary, s.scriptPath, assetPath, outDir); err != nil {
		return result, stages.SeparationFailure(err.Error(), err)
	}

	vocals := filepath.Join(outDir, VocalsFileName)
	instrumental := filepath.Join(outDir, InstrumentalFileName)
	for _, stem := range []string{vocals, instrumental} {
		if _, err := os.Stat(stem); err != nil {
			return result, stages.SeparationFailure(fmt.Sprintf("missing stem %s", filepath.Base(stem)), err)
		}
	}

	result.VocalsPath = vocals
	result.InstrumentalPath = instrumental
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
