package transcript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchTranscript_ParsesSuccessfulResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"transcript": {
					"id": "prov-1",
					"title": "Acme Corp - Weekly Sync",
					"date": 1700000000000,
					"summary": {"overview": "Discussed roadmap."},
					"sentences": [
						{"speaker_name": "Alice", "text": "Hi.", "start_time": 0, "end_time": 1},
						{"speaker_name": "Bob", "text": "Hello.", "start_time": 1, "end_time": 2}
					]
				}
			}
		}`))
	}))
	defer server.Close()

	provider := NewProvider(server.URL, "test-token", 0)
	transcript, err := provider.FetchTranscript(context.Background(), "prov-1")

	require.NoError(t, err)
	assert.Equal(t, "Acme Corp - Weekly Sync", transcript.Title)
	assert.Equal(t, int64(1700000000), transcript.Date)
	assert.Equal(t, "Discussed roadmap.", transcript.Summary)
	require.Len(t, transcript.Sentences, 2)
	assert.Equal(t, "Alice", transcript.Sentences[0].SpeakerName)
}

func TestFetchTranscript_ReturnsErrorOnGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"transcript": null}, "errors": [{"message": "not found"}]}`))
	}))
	defer server.Close()

	provider := NewProvider(server.URL, "test-token", 0)
	_, err := provider.FetchTranscript(context.Background(), "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
