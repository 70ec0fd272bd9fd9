package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkoraitest/consultant-copilot/internal/errors"
	"github.com/dkoraitest/consultant-copilot/internal/types"
)

// extrasStore is the narrow contract ExtrasHandler needs for the
// Hypothesis/Lead outer-shell entities; *store.Store implements it directly,
// outside interfaces.Store.
type extrasStore interface {
	CreateHypothesis(ctx context.Context, h *types.Hypothesis) error
	ListHypothesesByClient(ctx context.Context, clientID string) ([]*types.Hypothesis, error)
	CreateLead(ctx context.Context, l *types.Lead) error
	ListLeads(ctx context.Context) ([]*types.Lead, error)
}

// ExtrasHandler serves the Hypothesis/Lead outer-shell CRUD surface.
type ExtrasHandler struct {
	store extrasStore
}

// NewExtrasHandler builds an ExtrasHandler.
func NewExtrasHandler(store extrasStore) *ExtrasHandler {
	return &ExtrasHandler{store: store}
}

// CreateHypothesis processes POST /api/hypotheses.
func (h *ExtrasHandler) CreateHypothesis(c *gin.Context) {
	var hyp types.Hypothesis
	if err := c.ShouldBindJSON(&hyp); err != nil {
		c.Error(errors.NewBadRequestError(err.Error()))
		return
	}
	if hyp.ClientID == "" || hyp.Text == "" {
		c.Error(errors.NewValidationError("client_id and text are required"))
		return
	}

	if err := h.store.CreateHypothesis(c.Request.Context(), &hyp); err != nil {
		c.Error(errors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": hyp})
}

// ListHypotheses processes GET /api/clients/:id/hypotheses.
func (h *ExtrasHandler) ListHypotheses(c *gin.Context) {
	clientID := c.Param("id")
	hyps, err := h.store.ListHypothesesByClient(c.Request.Context(), clientID)
	if err != nil {
		c.Error(errors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": hyps})
}

// CreateLead processes POST /api/leads.
func (h *ExtrasHandler) CreateLead(c *gin.Context) {
	var lead types.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.Error(errors.NewBadRequestError(err.Error()))
		return
	}
	if lead.Name == "" {
		c.Error(errors.NewValidationError("name cannot be empty"))
		return
	}

	if err := h.store.CreateLead(c.Request.Context(), &lead); err != nil {
		c.Error(errors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": lead})
}

// ListLeads processes GET /api/leads.
func (h *ExtrasHandler) ListLeads(c *gin.Context) {
	leads, err := h.store.ListLeads(c.Request.Context())
	if err != nil {
		c.Error(errors.NewInternalServerError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": leads})
}
