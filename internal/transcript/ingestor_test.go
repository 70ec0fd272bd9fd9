package transcript

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoraitest/consultant-copilot/internal/types"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

type stubStore struct {
	byProviderID map[string]*types.Meeting
	byID         map[string]*types.Meeting
	created      []*types.Meeting
	summaries    []*types.Summary
	embeddings   map[string][]*types.MeetingEmbedding
	deletedCalls []string
}

func newStubStore() *stubStore {
	return &stubStore{
		byProviderID: map[string]*types.Meeting{},
		byID:         map[string]*types.Meeting{},
		embeddings:   map[string][]*types.MeetingEmbedding{},
	}
}

func (s *stubStore) CreateClient(context.Context, *types.Client) error            { return nil }
func (s *stubStore) GetClientByID(context.Context, string) (*types.Client, error) { return nil, nil }
func (s *stubStore) GetClientByName(context.Context, string) (*types.Client, error) {
	return nil, nil
}
func (s *stubStore) ListClientNames(context.Context) ([]string, error) { return nil, nil }

func (s *stubStore) CreateMeeting(ctx context.Context, m *types.Meeting) error {
	m.ID = "meeting-1"
	s.created = append(s.created, m)
	s.byID[m.ID] = m
	if m.ProviderMeetingID != nil {
		s.byProviderID[*m.ProviderMeetingID] = m
	}
	return nil
}
func (s *stubStore) GetMeetingByID(ctx context.Context, id string) (*types.Meeting, error) {
	return s.byID[id], nil
}
func (s *stubStore) GetMeetingByProviderID(ctx context.Context, providerID string) (*types.Meeting, error) {
	return s.byProviderID[providerID], nil
}
func (s *stubStore) ListMeetingTitles(context.Context) ([]string, error) { return nil, nil }
func (s *stubStore) ListMeetings(context.Context, []string) ([]*types.Meeting, error) {
	return nil, nil
}

func (s *stubStore) CreateSummary(ctx context.Context, sm *types.Summary) error {
	s.summaries = append(s.summaries, sm)
	return nil
}

func (s *stubStore) InsertMeetingEmbeddings(ctx context.Context, rows []*types.MeetingEmbedding) error {
	if len(rows) == 0 {
		return nil
	}
	s.embeddings[rows[0].MeetingID] = append(s.embeddings[rows[0].MeetingID], rows...)
	return nil
}
func (s *stubStore) DeleteMeetingEmbeddings(ctx context.Context, meetingID string) (int64, error) {
	n := int64(len(s.embeddings[meetingID]))
	delete(s.embeddings, meetingID)
	s.deletedCalls = append(s.deletedCalls, meetingID)
	return n, nil
}
func (s *stubStore) CountMeetingEmbeddings(ctx context.Context, meetingID string) (int64, error) {
	return int64(len(s.embeddings[meetingID])), nil
}
func (s *stubStore) CountAllEmbeddings(context.Context) (int64, error)   { return 0, nil }
func (s *stubStore) CountIndexedMeetings(context.Context) (int64, error) { return 0, nil }
func (s *stubStore) GetMeetingChunksInOrder(context.Context, string, int) ([]*types.MeetingEmbedding, error) {
	return nil, nil
}

func (s *stubStore) GetChatRoom(context.Context, int64) (*types.ChatRoom, error) { return nil, nil }
func (s *stubStore) ListActiveChatRooms(context.Context) ([]*types.ChatRoom, error) {
	return nil, nil
}
func (s *stubStore) ListChatClientNames(context.Context) ([]string, error)        { return nil, nil }
func (s *stubStore) AdvanceChatRoomCursor(context.Context, int64, int64) error     { return nil }
func (s *stubStore) SaveAndIndexChatMessage(context.Context, *types.ChatMessage,
	func(context.Context, string) ([]float32, error)) (bool, error) {
	return false, nil
}

func (s *stubStore) GetSetting(context.Context, string) (*types.Setting, error) { return nil, nil }
func (s *stubStore) SetSetting(context.Context, *types.Setting) error           { return nil }

func (s *stubStore) SearchMeetingsDiversified(context.Context, []float32, types.DiversifiedSearchParams) ([]types.MeetingHit, error) {
	return nil, nil
}
func (s *stubStore) SearchChatsDiversified(context.Context, []float32, types.DiversifiedSearchParams) ([]types.ChatHit, error) {
	return nil, nil
}
func (s *stubStore) GetChatHitsByMessageIDs(context.Context, []string, []float32) ([]types.ChatHit, error) {
	return nil, nil
}

var _ interfaces.Store = (*stubStore)(nil)

type stubProvider struct {
	transcript *interfaces.Transcript
	err        error
}

func (p *stubProvider) FetchTranscript(context.Context, string) (*interfaces.Transcript, error) {
	return p.transcript, p.err
}

type stubChunker struct{ chunks []string }

func (c *stubChunker) Chunk(text string, chunkSize, overlap int) []string { return c.chunks }

type stubEmbedder struct{ dim int }

func (e *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, 3)
	}
	return out, nil
}
func (e *stubEmbedder) Dimension() int { return 3 }

func sampleTranscript() *interfaces.Transcript {
	return &interfaces.Transcript{
		ID:    "prov-1",
		Title: "Acme Corp - Weekly Sync",
		Date:  1700000000,
		Sentences: []interfaces.TranscriptSentence{
			{SpeakerName: "Alice", Text: "Let's get started."},
			{SpeakerName: "Bob", Text: "Sounds good."},
		},
		Summary: "Discussed roadmap.",
	}
}

func TestHandleWebhook_IgnoresNonCompletedEvent(t *testing.T) {
	store := newStubStore()
	in := NewIngestor(store, &stubProvider{transcript: sampleTranscript()}, &stubChunker{chunks: []string{"a"}},
		&stubEmbedder{}, 1000, 200, 20000, nil, nil, nil)

	err := in.HandleWebhook(context.Background(), "prov-1", "Transcription started", nil)

	require.NoError(t, err)
	assert.Empty(t, store.created)
}

func TestHandleWebhook_ShortCircuitsOnExistingProviderID(t *testing.T) {
	store := newStubStore()
	store.byProviderID["prov-1"] = &types.Meeting{ID: "existing"}
	in := NewIngestor(store, &stubProvider{transcript: sampleTranscript()}, &stubChunker{chunks: []string{"a"}},
		&stubEmbedder{}, 1000, 200, 20000, nil, nil, nil)

	err := in.HandleWebhook(context.Background(), "prov-1", completedEventType, nil)

	require.NoError(t, err)
	assert.Empty(t, store.created)
}

func TestHandleWebhook_FlattensPersistsAndIndexes(t *testing.T) {
	store := newStubStore()
	in := NewIngestor(store, &stubProvider{transcript: sampleTranscript()}, &stubChunker{chunks: []string{"chunk-a", "chunk-b"}},
		&stubEmbedder{}, 1000, 200, 20000, nil, nil, nil)

	err := in.HandleWebhook(context.Background(), "prov-1", completedEventType, nil)

	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, "Alice: Let's get started.\nBob: Sounds good.", store.created[0].Transcript)
	require.Len(t, store.summaries, 1)
	assert.Equal(t, "Discussed roadmap.", store.summaries[0].Narrative)
	assert.Len(t, store.embeddings["meeting-1"], 2)
}

func TestIndexMeeting_SkipsWhenAlreadyFullyIndexed(t *testing.T) {
	store := newStubStore()
	store.byID["m1"] = &types.Meeting{ID: "m1", Transcript: "hello world"}
	store.embeddings["m1"] = []*types.MeetingEmbedding{{MeetingID: "m1", ChunkIndex: 0}}
	in := NewIngestor(store, &stubProvider{}, &stubChunker{chunks: []string{"only-chunk"}}, &stubEmbedder{}, 1000, 200, 20000, nil, nil, nil)

	err := in.IndexMeeting(context.Background(), "m1")

	require.NoError(t, err)
	assert.Len(t, store.embeddings["m1"], 1)
}

func TestReindexMeeting_DeletesThenReindexes(t *testing.T) {
	store := newStubStore()
	store.byID["m1"] = &types.Meeting{ID: "m1", Transcript: "hello world"}
	store.embeddings["m1"] = []*types.MeetingEmbedding{{MeetingID: "m1", ChunkIndex: 0}}
	in := NewIngestor(store, &stubProvider{}, &stubChunker{chunks: []string{"a", "b"}}, &stubEmbedder{}, 1000, 200, 20000, nil, nil, nil)

	err := in.ReindexMeeting(context.Background(), "m1")

	require.NoError(t, err)
	assert.Contains(t, store.deletedCalls, "m1")
	assert.Len(t, store.embeddings["m1"], 2)
}

type dispatcherStub struct{ dispatched []string }

func (d *dispatcherStub) DispatchIndexMeeting(ctx context.Context, meetingID string) error {
	d.dispatched = append(d.dispatched, meetingID)
	return nil
}

func TestHandleWebhook_DispatchesLargeTranscriptInsteadOfInlineIndexing(t *testing.T) {
	store := newStubStore()
	disp := &dispatcherStub{}
	in := NewIngestor(store, &stubProvider{transcript: sampleTranscript()}, &stubChunker{chunks: []string{"a"}},
		&stubEmbedder{}, 1000, 200, 5, disp, nil, nil) // threshold of 5 runes, flattened text exceeds it

	err := in.HandleWebhook(context.Background(), "prov-1", completedEventType, nil)

	require.NoError(t, err)
	require.Len(t, disp.dispatched, 1)
	assert.Empty(t, store.embeddings["meeting-1"])
}
