package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	salesapp "github.com/potting/backend/internal/application/sales"
)

// ConfirmationHandler handles sales confirmation (CV) API endpoints
type ConfirmationHandler struct {
	BaseHandler
	service *salesapp.ConfirmationService
}

// NewConfirmationHandler creates a new ConfirmationHandler
func NewConfirmationHandler(service *salesapp.ConfirmationService) *ConfirmationHandler {
	return &ConfirmationHandler{service: service}
}

// Create handles POST /api/v1/confirmations: register a council sales confirmation.
func (h *ConfirmationHandler) Create(c *gin.Context) {
	var req salesapp.CreateConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID handles GET /api/v1/confirmations/{id}: get a confirmation by ID.
func (h *ConfirmationHandler) GetByID(c *gin.Context) {
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

// List handles GET /api/v1/confirmations: list confirmations.
func (h *ConfirmationHandler) List(c *gin.Context) {
	var filter salesapp.ConfirmationListFilter
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

// Activate handles POST /api/v1/confirmations/{id}/activate: activate a confirmation envelope.
func (h *ConfirmationHandler) Activate(c *gin.Context) {
	h.mutate(c, h.service.Activate)
}

// Cancel handles POST /api/v1/confirmations/{id}/cancel: cancel a confirmation.
func (h *ConfirmationHandler) Cancel(c *gin.Context) {
	h.mutate(c, h.service.Cancel)
}

// ExtendValidity handles POST /api/v1/confirmations/{id}/extend: revive an expired confirmation whose window was extended.
func (h *ConfirmationHandler) ExtendValidity(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.ExtendValidity(c.Request.Context(), id, time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ResetToDraft handles POST /api/v1/confirmations/{id}/reset: return a confirmation to draft.
func (h *ConfirmationHandler) ResetToDraft(c *gin.Context) {
	h.mutate(c, h.service.ResetToDraft)
}

// Duplicate handles POST /api/v1/confirmations/{id}/duplicate: duplicate a confirmation under a new reference.
func (h *ConfirmationHandler) Duplicate(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req salesapp.DuplicateConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Duplicate(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Delete handles DELETE /api/v1/confirmations/{id}: delete a draft confirmation.
func (h *ConfirmationHandler) Delete(c *gin.Context) {
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

// Sweep handles POST /api/v1/confirmations/sweep: run the expiration sweep immediately.
func (h *ConfirmationHandler) Sweep(c *gin.Context) {
	result, err := h.service.SweepExpiration(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *ConfirmationHandler) mutate(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*salesapp.ConfirmationResponse, error)) {
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
