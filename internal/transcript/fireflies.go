// Package transcript fetches and indexes meeting transcripts: a GraphQL
// provider binding plus the webhook-triggered ingest and on-demand/reindex
// indexing paths.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// firefliesQuery mirrors the transcript query the original Python
// integration sends: a single transcript by id, with sentences and the
// generated summary.
const firefliesQuery = `
query Transcript($id: String!) {
  transcript(id: $id) {
    id
    title
    date
    summary { overview }
    sentences { speaker_name text start_time end_time }
  }
}`

type firefliesSentence struct {
	SpeakerName string  `json:"speaker_name"`
	Text        string  `json:"text"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
}

type firefliesTranscript struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Date    int64   `json:"date"` // epoch millis
	Summary struct {
		Overview string `json:"overview"`
	} `json:"summary"`
	Sentences []firefliesSentence `json:"sentences"`
}

type firefliesResponse struct {
	Data struct {
		Transcript *firefliesTranscript `json:"transcript"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Provider implements interfaces.TranscriptProvider against the Fireflies
// GraphQL API.
type Provider struct {
	graphqlURL string
	apiToken   string
	httpClient *http.Client
}

var _ interfaces.TranscriptProvider = (*Provider)(nil)

// NewProvider builds a Provider bound to the given GraphQL endpoint and
// bearer token.
func NewProvider(graphqlURL, apiToken string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Provider{
		graphqlURL: graphqlURL,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchTranscript calls the provider with the given provider-assigned
// meeting id and returns the structured payload.
func (p *Provider) FetchTranscript(ctx context.Context, providerMeetingID string) (*interfaces.Transcript, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query":     firefliesQuery,
		"variables": map[string]string{"id": providerMeetingID},
	})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call transcript provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript provider returned status %d", resp.StatusCode)
	}

	var parsed firefliesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("transcript provider error: %s", parsed.Errors[0].Message)
	}
	if parsed.Data.Transcript == nil {
		return nil, fmt.Errorf("transcript %q not found", providerMeetingID)
	}

	t := parsed.Data.Transcript
	sentences := make([]interfaces.TranscriptSentence, len(t.Sentences))
	for i, s := range t.Sentences {
		sentences[i] = interfaces.TranscriptSentence{
			SpeakerName: s.SpeakerName,
			Text:        s.Text,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
		}
	}

	return &interfaces.Transcript{
		ID:        t.ID,
		Title:     t.Title,
		Date:      t.Date / 1000,
		Sentences: sentences,
		Summary:   t.Summary.Overview,
	}, nil
}
