package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkoraitest/consultant-copilot/internal/errors"
	"github.com/dkoraitest/consultant-copilot/internal/types"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// CRUDHandler serves the ambient create/read surface for clients, meetings,
// and summaries that sits outside the webhook/retrieval core.
type CRUDHandler struct {
	store interfaces.Store
}

// NewCRUDHandler builds a CRUDHandler.
func NewCRUDHandler(store interfaces.Store) *CRUDHandler {
	return &CRUDHandler{store: store}
}

// CreateClient processes POST /api/clients.
func (h *CRUDHandler) CreateClient(c *gin.Context) {
	var client types.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		c.Error(errors.NewBadRequestError(err.Error()))
		return
	}
	if client.Name == "" {
		c.Error(errors.NewValidationError("name cannot be empty"))
		return
	}

	if err := h.store.CreateClient(c.Request.Context(), &client); err != nil {
		c.Error(errors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": client})
}

// GetClient processes GET /api/clients/:id.
func (h *CRUDHandler) GetClient(c *gin.Context) {
	id := c.Param("id")
	client, err := h.store.GetClientByID(c.Request.Context(), id)
	if appErr, ok := errors.IsAppError(err); ok && appErr.Code == errors.ErrNotFound {
		client, err = nil, nil
	}
	if err != nil {
		c.Error(errors.NewInternalServerError(err.Error()))
		return
	}
	if client == nil {
		c.Error(errors.NewNotFoundError("client not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": client})
}

// ListClientNames processes GET /api/clients.
func (h *CRUDHandler) ListClientNames(c *gin.Context) {
	names, err := h.store.ListClientNames(c.Request.Context())
	if err != nil {
		c.Error(errors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": names})
}

// GetMeeting processes GET /api/meetings/:id.
func (h *CRUDHandler) GetMeeting(c *gin.Context) {
	id := c.Param("id")
	meeting, err := h.store.GetMeetingByID(c.Request.Context(), id)
	if appErr, ok := errors.IsAppError(err); ok && appErr.Code == errors.ErrNotFound {
		meeting, err = nil, nil
	}
	if err != nil {
		c.Error(errors.NewInternalServerError(err.Error()))
		return
	}
	if meeting == nil {
		c.Error(errors.NewNotFoundError("meeting not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": meeting})
}

// ListMeetingTitles processes GET /api/meetings.
func (h *CRUDHandler) ListMeetingTitles(c *gin.Context) {
	titles, err := h.store.ListMeetingTitles(c.Request.Context())
	if err != nil {
		c.Error(errors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": titles})
}

type createSummaryRequest struct {
	MeetingID string            `json:"meeting_id" binding:"required"`
	Type      types.MeetingType `json:"type" binding:"required"`
	Narrative string            `json:"narrative" binding:"required"`
}

// CreateSummary processes POST /api/summaries.
func (h *CRUDHandler) CreateSummary(c *gin.Context) {
	var req createSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError(err.Error()))
		return
	}

	summary := &types.Summary{MeetingID: req.MeetingID, Type: req.Type, Narrative: req.Narrative}
	if err := h.store.CreateSummary(c.Request.Context(), summary); err != nil {
		c.Error(errors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": summary})
}
