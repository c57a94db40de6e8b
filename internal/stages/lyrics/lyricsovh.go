package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chorus/internal/stages"
)

// DefaultLookupBaseURL is the public lyrics.ovh API root.
const DefaultLookupBaseURL = "https://api.lyrics.ovh/v1"

// LookupProvider resolves lyrics by artist and title against a lyrics.ovh
// compatible endpoint.
type LookupProvider struct {
	baseURL string
	client  *http.Client
}

// NewLookupProvider creates a provider against baseURL with the given request
// timeout.
func NewLookupProvider(baseURL string, timeout time.Duration) *LookupProvider {
	if baseURL == "" {
		baseURL = DefaultLookupBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LookupProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type lookupPayload struct {
	Lyrics string `json:"lyrics"`
}

// Lookup fetches lyrics for the hinted track. A miss (404 or empty body)
// returns an empty transcript with no error.
func (p *LookupProvider) Lookup(ctx context.Context, hints stages.Hints) (stages.Transcript, error) {
	var transcript stages.Transcript

	if hints.Artist == "" || hints.Title == "" {
		return transcript, nil
	}

	endpoint := fmt.Sprintf("%s/%s/%s", p.baseURL, url.PathEscape(hints.Artist), url.PathEscape(hints.Title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return transcript, fmt.Errorf("lyrics lookup: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return transcript, fmt.Errorf("lyrics lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return transcript, nil
	}
	if resp.StatusCode != http.StatusOK {
		return transcript, fmt.Errorf("lyrics lookup: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return transcript, fmt.Errorf("lyrics lookup: read body: %w", err)
	}
	var payload lookupPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return transcript, fmt.Errorf("lyrics lookup: parse body: %w", err)
	}

	for _, raw := range strings.Split(payload.Lyrics, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		transcript.Lines = append(transcript.Lines, stages.LyricLine{Text: line})
	}
	return transcript, nil
}
