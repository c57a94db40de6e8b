package lyrics

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"chorus/internal/logging"
	"chorus/internal/stages"
)

// lookupClient resolves lyrics by descriptive hints.
type lookupClient interface {
	Lookup(ctx context.Context, hints stages.Hints) (stages.Transcript, error)
}

// transcriberClient derives a transcript from a vocal stem.
type transcriberClient interface {
	Transcribe(ctx context.Context, vocalsPath string) (stages.Transcript, error)
}

// Service implements stages.LyricsAcquirer with a fixed source priority:
// online lookup first, transcription of the vocal stem second. Any source
// error is logged and the chain moves on; the worst case outcome is an empty
// transcript.
type Service struct {
	lookup      lookupClient
	transcriber transcriberClient
	logger      *slog.Logger
	titler      cases.Caser
}

// NewService assembles an acquirer from the given sources. Either source may
// be nil to disable it.
func NewService(lookup *LookupProvider, transcriber *Transcriber, logger *slog.Logger) *Service {
	svc := &Service{
		logger: logging.NewComponentLogger(logger, "lyrics"),
		titler: cases.Title(language.English),
	}
	if lookup != nil {
		svc.lookup = lookup
	}
	if transcriber != nil {
		svc.transcriber = transcriber
	}
	return svc
}

// Acquire resolves a transcript for the track. It never returns an error;
// callers get an empty transcript when every source comes up dry.
func (s *Service) Acquire(ctx context.Context, hints stages.Hints, vocalsPath string) stages.Transcript {
	hints = s.normalizeHints(hints)

	if s.lookup != nil {
		transcript, err := s.lookup.Lookup(ctx, hints)
		switch {
		case err != nil:
			s.logger.Warn("lyric lookup failed, falling back",
				logging.String("artist", hints.Artist),
				logging.String("title", hints.Title),
				logging.Error(err))
		case len(transcript.Lines) > 0:
			s.logger.Info("lyrics resolved via lookup",
				logging.String("artist", hints.Artist),
				logging.String("title", hints.Title),
				logging.Int("lines", len(transcript.Lines)))
			return transcript
		}
	}

	if s.transcriber != nil && vocalsPath != "" {
		transcript, err := s.transcriber.Transcribe(ctx, vocalsPath)
		if err != nil {
			s.logger.Warn("vocal transcription failed", logging.Error(err))
		} else if len(transcript.Lines) > 0 {
			s.logger.Info("lyrics resolved via transcription",
				logging.Int("lines", len(transcript.Lines)))
			return transcript
		}
	}

	s.logger.Info("no lyrics found, proceeding with empty transcript")
	return stages.Transcript{}
}

// normalizeHints trims and title-cases lookup hints so casing quirks in the
// submitted metadata do not defeat the lookup index.
func (s *Service) normalizeHints(hints stages.Hints) stages.Hints {
	hints.Artist = strings.TrimSpace(hints.Artist)
	hints.Title = strings.TrimSpace(hints.Title)
	if hints.Artist != "" {
		hints.Artist = s.titler.String(strings.ToLower(hints.Artist))
	}
	if hints.Title != "" {
		hints.Title = s.titler.String(strings.ToLower(hints.Title))
	}
	return hints
}
