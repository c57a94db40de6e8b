package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"chorus/internal/stages"
)

// SubtitleFileName is written into the job dir before rendering.
const SubtitleFileName = "lyrics.srt"

// Service renders the final video with ffmpeg.
type Service struct {
	ffmpegBinary  string
	outputDir     string
	fontSize      int
	lineSeconds   float64
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a renderer writing finished videos into outputDir.
func NewService(ffmpegBinary, outputDir string, fontSize int, lineSeconds float64) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if fontSize <= 0 {
		fontSize = 24
	}
	if lineSeconds <= 0 {
		lineSeconds = DefaultLineSeconds
	}
	return &Service{
		ffmpegBinary: ffmpegBinary,
		outputDir:    outputDir,
		fontSize:     fontSize,
		lineSeconds:  lineSeconds,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Render mixes the stems, burns in the subtitles, and writes the finished
// video. It returns the output path.
func (s *Service) Render(ctx context.Context, in stages.RenderInput) (string, error) {
	if in.InstrumentalPath == "" {
		return "", stages.RenderFailure("instrumental stem required", nil)
	}
	if in.JobKey == "" {
		return "", stages.RenderFailure("job key required", nil)
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", stages.RenderFailure(fmt.Sprintf("ensure output dir: %v", err), err)
	}

	subtitlePath := ""
	if len(in.Transcript.Lines) > 0 {
		subtitlePath = filepath.Join(in.JobDir, SubtitleFileName)
		srt := BuildSRT(in.Transcript, s.lineSeconds)
		if err := os.WriteFile(subtitlePath, []byte(srt), 0o644); err != nil {
			return "", stages.RenderFailure(fmt.Sprintf("write subtitles: %v", err), err)
		}
	}

	outputPath := filepath.Join(s.outputDir, in.JobKey+".mp4")
	args := s.buildArgs(in, subtitlePath, outputPath)
	if err := s.run(ctx, s.ffmpegBinary, args...); err != nil {
		return "", stages.RenderFailure(err.Error(), err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return "", stages.RenderFailure("output file missing after render", err)
	}
	return outputPath, nil
}

// buildArgs assembles the full ffmpeg invocation. The video track is a solid
// background with subtitles burned in; the audio track is the instrumental,
// optionally mixed with the attenuated vocal stem.
func (s *Service) buildArgs(in stages.RenderInput, subtitlePath, outputPath string) []string {
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", "color=c=black:s=1280x720:r=30",
		"-i", in.InstrumentalPath,
	}

	mixVocals := in.Options.IncludeBackgroundVocals && in.VocalsPath != ""
	if mixVocals {
		args = append(args, "-i", in.VocalsPath)
	}

	var filters []string
	audioLabel := "1:a"
	if mixVocals {
		filters = append(filters,
			fmt.Sprintf("[2:a]volume=%g[bg]", in.Options.VocalsVolume),
			"[1:a][bg]amix=inputs=2:duration=first[aout]",
		)
		audioLabel = "[aout]"
	}

	videoLabel := "0:v"
	if subtitlePath != "" {
		filters = append(filters, fmt.Sprintf(
			"[0:v]subtitles=%s:force_style='FontSize=%d,Alignment=2'[vout]",
			escapeFilterPath(subtitlePath), s.fontSize))
		videoLabel = "[vout]"
	}

	if len(filters) > 0 {
		args = append(args, "-filter_complex", strings.Join(filters, ";"))
	}

	args = append(args,
		"-map", videoLabel,
		"-map", audioLabel,
		"-c:v", "libx264",
		"-preset", "fast",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	)
	return args
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

// escapeFilterPath quotes characters the ffmpeg filter parser treats as
// syntax.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
		`,`, `\,`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return replacer.Replace(path)
}
