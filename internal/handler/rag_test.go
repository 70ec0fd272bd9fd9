package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoraitest/consultant-copilot/internal/types"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubStore struct {
	meetings        []*types.Meeting
	embeddingCounts map[string]int64
	totalEmbeddings int64
	indexedMeetings int64
	deleted         int64
}

func (s *stubStore) CreateClient(context.Context, *types.Client) error             { return nil }
func (s *stubStore) GetClientByID(context.Context, string) (*types.Client, error)  { return nil, nil }
func (s *stubStore) GetClientByName(context.Context, string) (*types.Client, error) {
	return nil, nil
}
func (s *stubStore) ListClientNames(context.Context) ([]string, error) { return nil, nil }

func (s *stubStore) CreateMeeting(context.Context, *types.Meeting) error { return nil }
func (s *stubStore) GetMeetingByID(context.Context, string) (*types.Meeting, error) {
	return nil, nil
}
func (s *stubStore) GetMeetingByProviderID(context.Context, string) (*types.Meeting, error) {
	return nil, nil
}
func (s *stubStore) ListMeetingTitles(context.Context) ([]string, error) { return nil, nil }
func (s *stubStore) ListMeetings(_ context.Context, ids []string) ([]*types.Meeting, error) {
	if len(ids) == 0 {
		return s.meetings, nil
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*types.Meeting
	for _, m := range s.meetings {
		if want[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubStore) CreateSummary(context.Context, *types.Summary) error { return nil }

func (s *stubStore) InsertMeetingEmbeddings(context.Context, []*types.MeetingEmbedding) error {
	return nil
}
func (s *stubStore) DeleteMeetingEmbeddings(context.Context, string) (int64, error) {
	return s.deleted, nil
}
func (s *stubStore) CountMeetingEmbeddings(_ context.Context, meetingID string) (int64, error) {
	return s.embeddingCounts[meetingID], nil
}
func (s *stubStore) CountAllEmbeddings(context.Context) (int64, error) { return s.totalEmbeddings, nil }
func (s *stubStore) CountIndexedMeetings(context.Context) (int64, error) {
	return s.indexedMeetings, nil
}
func (s *stubStore) GetMeetingChunksInOrder(context.Context, string, int) ([]*types.MeetingEmbedding, error) {
	return nil, nil
}

func (s *stubStore) GetChatRoom(context.Context, int64) (*types.ChatRoom, error) { return nil, nil }
func (s *stubStore) ListActiveChatRooms(context.Context) ([]*types.ChatRoom, error) {
	return nil, nil
}
func (s *stubStore) ListChatClientNames(context.Context) ([]string, error)    { return nil, nil }
func (s *stubStore) AdvanceChatRoomCursor(context.Context, int64, int64) error { return nil }
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

type stubEngine struct {
	result *types.AskResult
	err    error
}

func (e *stubEngine) Ask(context.Context, string, *string, bool) (*types.AskResult, error) {
	return e.result, e.err
}
func (e *stubEngine) GetMeetingContext(context.Context, string, string) (string, error) {
	return "", nil
}

var _ AskEngine = (*stubEngine)(nil)

type stubIngestor struct {
	indexed       []string
	reindexed     []string
	webhookCalled bool
}

func (in *stubIngestor) HandleWebhook(_ context.Context, _, _ string, _ *string) error {
	in.webhookCalled = true
	return nil
}
func (in *stubIngestor) IndexMeeting(_ context.Context, meetingID string) error {
	in.indexed = append(in.indexed, meetingID)
	return nil
}
func (in *stubIngestor) ReindexMeeting(_ context.Context, meetingID string) error {
	in.reindexed = append(in.reindexed, meetingID)
	return nil
}

var _ TranscriptIngestor = (*stubIngestor)(nil)

func doRequest(h gin.HandlerFunc, method, path string, body any, params gin.Params) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params

	h(c)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHandleFirefliesWebhook_ReturnsStatusAndMessage(t *testing.T) {
	ingestor := &stubIngestor{}
	h := NewRAGHandler(&stubStore{}, &stubEngine{}, ingestor)

	w := doRequest(h.HandleFirefliesWebhook, http.MethodPost, "/api/webhook/fireflies",
		map[string]any{"meetingId": "prov-1", "eventType": "Transcription completed"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, ingestor.webhookCalled)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["message"])
}

func TestHandleAsk_MergesMeetingAndChatSourcesIntoOneList(t *testing.T) {
	meetingDate := "2026-01-01"
	engine := &stubEngine{result: &types.AskResult{
		Answer: "the answer",
		MeetingSources: []types.MeetingSource{
			{MeetingTitle: "Acme - Sync", MeetingDate: &meetingDate, Similarity: 0.9},
		},
		ChatSources: []types.ChatSource{
			{ChatTitle: "Acme Group", Similarity: 0.7},
		},
	}}
	h := NewRAGHandler(&stubStore{}, engine, &stubIngestor{})

	w := doRequest(h.HandleAsk, http.MethodPost, "/api/rag/ask",
		map[string]any{"question": "what happened?"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "the answer", body["answer"])
	sources, ok := body["sources"].([]any)
	require.True(t, ok)
	assert.Len(t, sources, 2)
}

func TestHandleIndex_NoMeetingIDsIndexesEveryMeeting(t *testing.T) {
	store := &stubStore{
		meetings:        []*types.Meeting{{ID: "m1"}, {ID: "m2"}},
		embeddingCounts: map[string]int64{"m1": 3, "m2": 5},
	}
	ingestor := &stubIngestor{}
	h := NewRAGHandler(store, &stubEngine{}, ingestor)

	w := doRequest(h.HandleIndex, http.MethodPost, "/api/rag/index", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []string{"m1", "m2"}, ingestor.indexed)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	stats, ok := body["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(8), stats["total_chunks"])
}

func TestHandleIndex_WithMeetingIDsIndexesOnlyThose(t *testing.T) {
	store := &stubStore{
		meetings:        []*types.Meeting{{ID: "m1"}, {ID: "m2"}},
		embeddingCounts: map[string]int64{"m1": 3, "m2": 5},
	}
	ingestor := &stubIngestor{}
	h := NewRAGHandler(store, &stubEngine{}, ingestor)

	w := doRequest(h.HandleIndex, http.MethodPost, "/api/rag/index",
		map[string]any{"meeting_ids": []string{"m2"}}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"m2"}, ingestor.indexed)
}

func TestHandleStats_ReturnsTotalChunksField(t *testing.T) {
	store := &stubStore{totalEmbeddings: 42, indexedMeetings: 7}
	h := NewRAGHandler(store, &stubEngine{}, &stubIngestor{})

	w := doRequest(h.HandleStats, http.MethodGet, "/api/rag/stats", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(42), body["total_chunks"])
	assert.Equal(t, float64(7), body["indexed_meetings"])
	_, hasOldKey := body["total_embeddings"]
	assert.False(t, hasOldKey)
}

func TestHandleDeleteIndex_ReturnsDeletedChunksField(t *testing.T) {
	store := &stubStore{deleted: 9}
	h := NewRAGHandler(store, &stubEngine{}, &stubIngestor{})

	w := doRequest(h.HandleDeleteIndex, http.MethodDelete, "/api/rag/index/m1", nil,
		gin.Params{{Key: "meeting_id", Value: "m1"}})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(9), body["deleted_chunks"])
}

func TestHandleReindex_ReturnsChunksCreatedField(t *testing.T) {
	store := &stubStore{embeddingCounts: map[string]int64{"m1": 4}}
	ingestor := &stubIngestor{}
	h := NewRAGHandler(store, &stubEngine{}, ingestor)

	w := doRequest(h.HandleReindex, http.MethodPost, "/api/rag/reindex/m1", nil,
		gin.Params{{Key: "meeting_id", Value: "m1"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"m1"}, ingestor.reindexed)
	body := decodeBody(t, w)
	assert.Equal(t, float64(4), body["chunks_created"])
}
