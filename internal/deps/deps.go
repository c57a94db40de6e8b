// Package deps verifies that the external tools the pipeline shells out to
// are installed before work is accepted.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"chorus/internal/config"
)

// Requirement defines an external dependency chorus relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements derives the dependency list from the configured tool paths.
// The lyric transcriber is optional: its absence degrades lyric acquisition,
// never job processing.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "yt-dlp", Command: cfg.Tools.YtDlp, Description: "source media download"},
		{Name: "python", Command: cfg.Tools.Python, Description: "audio stem separation"},
		{Name: "ffmpeg", Command: cfg.Tools.FFmpeg, Description: "video rendering"},
		{Name: "uvx", Command: cfg.Tools.Uvx, Description: "vocal transcription", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable required dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
