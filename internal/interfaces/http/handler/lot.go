package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pottingapp "github.com/potting/backend/internal/application/potting"
)

// LotHandler handles production lot API endpoints
type LotHandler struct {
	BaseHandler
	service *pottingapp.LotService
}

// NewLotHandler creates a new LotHandler
func NewLotHandler(service *pottingapp.LotService) *LotHandler {
	return &LotHandler{service: service}
}

// GetByID handles GET /api/v1/lots/{id}: get a lot by ID.
func (h *LotHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /api/v1/lots: list lots.
func (h *LotHandler) List(c *gin.Context) {
	var filter pottingapp.LotListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Paged(c, resp, filter.Page, filter.PageSize, len(resp))
}

// AddProduction handles POST /api/v1/lots/{id}/production: record produced tonnage into a lot.
func (h *LotHandler) AddProduction(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.AddProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.AddProduction(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkReady handles POST /api/v1/lots/{id}/ready: mark a full lot ready for potting.
func (h *LotHandler) MarkReady(c *gin.Context) {
	h.mutate(c, h.service.MarkReady)
}

// ForceReady handles POST /api/v1/lots/{id}/force-ready: mark a partially filled lot ready.
func (h *LotHandler) ForceReady(c *gin.Context) {
	h.mutate(c, h.service.ForceReady)
}

// ConfirmPotting handles POST /api/v1/lots/{id}/pot: pot a ready lot into a container.
func (h *LotHandler) ConfirmPotting(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.ConfirmPottingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ConfirmPotting(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ResetToDraft handles POST /api/v1/lots/{id}/reset: return a lot to draft.
func (h *LotHandler) ResetToDraft(c *gin.Context) {
	h.mutate(c, h.service.ResetToDraft)
}

// Delete handles DELETE /api/v1/lots/{id}: delete an empty draft lot.
func (h *LotHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *LotHandler) mutate(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*pottingapp.LotResponse, error)) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
