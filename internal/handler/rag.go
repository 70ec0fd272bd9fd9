package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/dkoraitest/consultant-copilot/internal/errors"
	"github.com/dkoraitest/consultant-copilot/internal/logger"
	"github.com/dkoraitest/consultant-copilot/internal/types"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// AskEngine is the narrow contract RAGHandler needs from the retrieval
// engine, kept separate from the concrete *retrieval.Engine type so this
// package is trivially testable with a stub and so the dependency
// container can bind it without naming an unexported type.
type AskEngine interface {
	Ask(ctx context.Context, question string, clientID *string, searchChats bool) (*types.AskResult, error)
	GetMeetingContext(ctx context.Context, meetingID, question string) (string, error)
}

// TranscriptIngestor is the narrow contract RAGHandler needs from the
// transcript ingestor. clientReferenceID, when present, names the client
// directly instead of leaving HandleWebhook to infer one from the meeting
// title.
type TranscriptIngestor interface {
	HandleWebhook(ctx context.Context, providerMeetingID, eventType string, clientReferenceID *string) error
	IndexMeeting(ctx context.Context, meetingID string) error
	ReindexMeeting(ctx context.Context, meetingID string) error
}

// RAGHandler serves the webhook delivery and the ask/index/stats/reindex
// retrieval-engine surface.
type RAGHandler struct {
	store    interfaces.Store
	engine   AskEngine
	ingestor TranscriptIngestor
}

// NewRAGHandler builds a RAGHandler.
func NewRAGHandler(store interfaces.Store, engine AskEngine, ingestor TranscriptIngestor) *RAGHandler {
	return &RAGHandler{store: store, engine: engine, ingestor: ingestor}
}

type webhookPayload struct {
	MeetingID         string  `json:"meetingId" binding:"required"`
	EventType         string  `json:"eventType" binding:"required"`
	ClientReferenceID *string `json:"clientReferenceId,omitempty"`
}

// HandleFirefliesWebhook processes POST /api/webhook/fireflies.
func (h *RAGHandler) HandleFirefliesWebhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Error(apperrors.NewBadRequestError(err.Error()))
		return
	}

	err := h.ingestor.HandleWebhook(c.Request.Context(), payload.MeetingID, payload.EventType, payload.ClientReferenceID)
	if err != nil {
		logger.GetLogger(c.Request.Context()).WithField("component", "handler").
			Errorf("handle webhook for meeting %s: %v", payload.MeetingID, err)
		c.Error(apperrors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "webhook processed"})
}

type askRequest struct {
	Question    string  `json:"question" binding:"required"`
	ClientID    *string `json:"client_id,omitempty"`
	SearchChats bool    `json:"search_chats"`
}

// HandleAsk processes POST /api/rag/ask.
func (h *RAGHandler) HandleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError(err.Error()))
		return
	}

	result, err := h.engine.Ask(c.Request.Context(), req.Question, req.ClientID, req.SearchChats)
	if err != nil {
		c.Error(apperrors.NewInternalServerError(err.Error()))
		return
	}

	sources := mergeSources(result.MeetingSources, result.ChatSources)
	c.JSON(http.StatusOK, gin.H{"answer": result.Answer, "sources": sources})
}

// mergeSources flattens the meeting and chat source lists into the single
// ranked list spec.md's ask response documents; chat sources follow meeting
// sources since the cascade already orders each list by similarity. Each
// source keeps its own json tags (meeting_title/meeting_date vs
// chat_title/client_name), so the two shapes sit side by side in one array.
func mergeSources(meetings []types.MeetingSource, chats []types.ChatSource) []any {
	sources := make([]any, 0, len(meetings)+len(chats))
	for _, m := range meetings {
		sources = append(sources, m)
	}
	for _, ch := range chats {
		sources = append(sources, ch)
	}
	return sources
}

type indexRequest struct {
	MeetingIDs []string `json:"meeting_ids,omitempty"`
}

// HandleIndex processes POST /api/rag/index. An empty or absent meeting_ids
// indexes every meeting that isn't fully indexed yet.
func (h *RAGHandler) HandleIndex(c *gin.Context) {
	var req indexRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperrors.NewBadRequestError(err.Error()))
		return
	}

	ctx := c.Request.Context()
	meetings, err := h.store.ListMeetings(ctx, req.MeetingIDs)
	if err != nil {
		c.Error(apperrors.NewInternalServerError(err.Error()))
		return
	}

	var totalChunks int64
	for _, m := range meetings {
		if err := h.ingestor.IndexMeeting(ctx, m.ID); err != nil {
			c.Error(apperrors.NewInternalServerError(err.Error()))
			return
		}
		n, err := h.store.CountMeetingEmbeddings(ctx, m.ID)
		if err != nil {
			c.Error(apperrors.NewInternalServerError(err.Error()))
			return
		}
		totalChunks += n
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": fmt.Sprintf("indexed %d meeting(s)", len(meetings)),
		"stats":   gin.H{"total_chunks": totalChunks},
	})
}

// HandleStats processes GET /api/rag/stats.
func (h *RAGHandler) HandleStats(c *gin.Context) {
	ctx := c.Request.Context()

	totalChunks, err := h.store.CountAllEmbeddings(ctx)
	if err != nil {
		c.Error(apperrors.NewInternalServerError(err.Error()))
		return
	}
	indexedMeetings, err := h.store.CountIndexedMeetings(ctx)
	if err != nil {
		c.Error(apperrors.NewInternalServerError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_chunks":     totalChunks,
		"indexed_meetings": indexedMeetings,
	})
}

// HandleDeleteIndex processes DELETE /api/rag/index/:meeting_id.
func (h *RAGHandler) HandleDeleteIndex(c *gin.Context) {
	meetingID := c.Param("meeting_id")
	if meetingID == "" {
		c.Error(apperrors.NewBadRequestError("meeting_id cannot be empty"))
		return
	}

	deleted, err := h.store.DeleteMeetingEmbeddings(c.Request.Context(), meetingID)
	if err != nil {
		c.Error(apperrors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted_chunks": deleted})
}

// HandleMeetingContext processes GET /api/rag/meetings/:meeting_id/context.
// The question query parameter defaults to a generic "summarize this
// meeting" prompt when absent, matching the original service's default.
func (h *RAGHandler) HandleMeetingContext(c *gin.Context) {
	meetingID := c.Param("meeting_id")
	if meetingID == "" {
		c.Error(apperrors.NewBadRequestError("meeting_id cannot be empty"))
		return
	}
	question := c.Query("question")
	if question == "" {
		question = "Расскажи основное содержание"
	}

	answer, err := h.engine.GetMeetingContext(c.Request.Context(), meetingID, question)
	if err != nil {
		c.Error(apperrors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "answer": answer})
}

// HandleReindex processes POST /api/rag/reindex/:meeting_id.
func (h *RAGHandler) HandleReindex(c *gin.Context) {
	meetingID := c.Param("meeting_id")
	if meetingID == "" {
		c.Error(apperrors.NewBadRequestError("meeting_id cannot be empty"))
		return
	}

	ctx := c.Request.Context()
	if err := h.ingestor.ReindexMeeting(ctx, meetingID); err != nil {
		c.Error(apperrors.NewInternalServerError(err.Error()))
		return
	}
	chunksCreated, err := h.store.CountMeetingEmbeddings(ctx, meetingID)
	if err != nil {
		c.Error(apperrors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunks_created": chunksCreated})
}
