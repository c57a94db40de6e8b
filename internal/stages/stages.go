package stages

import "context"

// Stage names used in failure records and structured logs.
const (
	StageFetch    = "fetch"
	StageSeparate = "separate"
	StageLyrics   = "lyrics"
	StageRender   = "render"
)

// FetchResult is the outcome of resolving a source URL to a local asset.
type FetchResult struct {
	AssetPath string
}

// Fetcher resolves a source URL into a local audio asset under jobDir.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL, jobDir string) (FetchResult, error)
}

// SeparationResult holds the stem paths produced from one asset.
type SeparationResult struct {
	InstrumentalPath string
	VocalsPath       string
}

// Separator splits an asset into instrumental and vocal stems under jobDir.
type Separator interface {
	Separate(ctx context.Context, assetPath, jobDir string) (SeparationResult, error)
}

// LyricLine is one ordered line of text, optionally timed in seconds.
type LyricLine struct {
	Text      string
	StartTime *float64
	EndTime   *float64
}

// Transcript is an ordered sequence of lyric lines. Empty is a valid outcome.
type Transcript struct {
	Lines []LyricLine
	Timed bool
}

// Hints carries caller-supplied descriptive metadata used for lyric lookup.
type Hints struct {
	Artist string
	Title  string
}

// LyricsAcquirer produces a transcript for a track. Acquisition never fails:
// when every source comes up empty the result is an empty transcript.
type LyricsAcquirer interface {
	Acquire(ctx context.Context, hints Hints, vocalsPath string) Transcript
}

// RenderOptions are the caller-controlled knobs for the final mix.
type RenderOptions struct {
	IncludeBackgroundVocals bool
	VocalsVolume            float64
}

// RenderInput bundles everything the render stage needs for one job.
type RenderInput struct {
	JobKey           string
	JobDir           string
	AssetPath        string
	InstrumentalPath string
	VocalsPath       string
	Transcript       Transcript
	Options          RenderOptions
}

// Renderer muxes stems and lyric lines into the output artifact and returns
// its path.
type Renderer interface {
	Render(ctx context.Context, in RenderInput) (string, error)
}
