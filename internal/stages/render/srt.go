package render

import (
	"fmt"
	"strings"

	"chorus/internal/stages"
)

// DefaultLineSeconds is the display duration assumed for each line of an
// untimed transcript.
const DefaultLineSeconds = 3.0

// BuildSRT serializes a transcript as SubRip text. Untimed lines get
// sequential estimated windows of lineSeconds each so lookup lyrics still
// scroll at a readable pace.
func BuildSRT(transcript stages.Transcript, lineSeconds float64) string {
	if lineSeconds <= 0 {
		lineSeconds = DefaultLineSeconds
	}

	var b strings.Builder
	for i, line := range transcript.Lines {
		start := float64(i) * lineSeconds
		end := start + lineSeconds
		if transcript.Timed && line.StartTime != nil && line.EndTime != nil {
			start = *line.StartTime
			end = *line.EndTime
		}

		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatSRTTime(start), formatSRTTime(end))
		fmt.Fprintf(&b, "%s\n\n", line.Text)
	}
	return b.String()
}

// formatSRTTime renders seconds as the SubRip HH:MM:SS,mmm timestamp.
func formatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(seconds*1000 + 0.5)
	h := millis / 3_600_000
	millis -= h * 3_600_000
	m := millis / 60_000
	millis -= m * 60_000
	s := millis / 1000
	millis -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, millis)
}
