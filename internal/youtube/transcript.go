package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoTranscript is returned when the captions endpoint has no track for
// the requested video and language. It covers captions being disabled, the
// video not existing, and no track in the requested language; the endpoint
// does not distinguish between them.
var ErrNoTranscript = errors.New("no captions available for video")

// TranscriptClient fetches timed captions from the YouTube timedtext
// endpoint and flattens them into a single transcript string.
type TranscriptClient struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewTranscriptClient creates a transcript client for the given captions
// endpoint and language filter.
func NewTranscriptClient(baseURL, language string, timeout time.Duration) *TranscriptClient {
	return &TranscriptClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// captionTrack mirrors the timedtext XML payload:
// <transcript><text start="0.0" dur="1.5">caption</text>...</transcript>
type captionTrack struct {
	XMLName xml.Name  `xml:"transcript"`
	Lines   []caption `xml:"text"`
}

type caption struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// Fetch retrieves the caption track for videoID and returns all snippet
// texts joined with single spaces, in the provider's given order.
func (c *TranscriptClient) Fetch(ctx context.Context, videoID string) (string, error) {
	q := url.Values{}
	q.Set("lang", c.language)
	q.Set("v", videoID)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/timedtext?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript body: %w", err)
	}

	// The endpoint answers 200 with an empty body when no track exists.
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", fmt.Errorf("video %s (lang %s): %w", videoID, c.language, ErrNoTranscript)
	}

	var track captionTrack
	if err := xml.Unmarshal(body, &track); err != nil {
		return "", fmt.Errorf("failed to parse transcript: %w", err)
	}
	if len(track.Lines) == 0 {
		return "", fmt.Errorf("video %s (lang %s): %w", videoID, c.language, ErrNoTranscript)
	}

	parts := make([]string, 0, len(track.Lines))
	for _, line := range track.Lines {
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " "), nil
}
