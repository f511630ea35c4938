package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	campaignapp "github.com/potting/backend/internal/application/campaign"
)

// CampaignHandler handles campaign API endpoints
type CampaignHandler struct {
	BaseHandler
	service *campaignapp.Service
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(service *campaignapp.Service) *CampaignHandler {
	return &CampaignHandler{service: service}
}

// SetDutyRateRequest updates the campaign export duty rate
type SetDutyRateRequest struct {
	Rate decimal.Decimal `json:"rate" binding:"required"`
}

// Create handles POST /api/v1/campaigns: create the campaign for a crop year.
func (h *CampaignHandler) Create(c *gin.Context) {
	var req campaignapp.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.CreateForYear(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID handles GET /api/v1/campaigns/{id}: get a campaign by ID.
func (h *CampaignHandler) GetByID(c *gin.Context) {
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

// GetCurrent handles GET /api/v1/campaigns/current: get the campaign covering today.
func (h *CampaignHandler) GetCurrent(c *gin.Context) {
	resp, err := h.service.GetCurrent(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /api/v1/campaigns: list campaigns.
func (h *CampaignHandler) List(c *gin.Context) {
	var filter campaignapp.CampaignListFilter
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

// SetDutyRate handles PUT /api/v1/campaigns/{id}/duty-rate: set the campaign export duty rate.
func (h *CampaignHandler) SetDutyRate(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req SetDutyRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.SetExportDutyRate(c.Request.Context(), id, req.Rate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetOfficialPrice handles PUT /api/v1/campaigns/{id}/prices: record a council price for a product.
func (h *CampaignHandler) SetOfficialPrice(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req campaignapp.SetOfficialPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.SetOfficialPrice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate handles POST /api/v1/campaigns/{id}/activate: activate a campaign.
func (h *CampaignHandler) Activate(c *gin.Context) {
	h.mutate(c, h.service.Activate)
}

// Close handles POST /api/v1/campaigns/{id}/close: close a campaign.
func (h *CampaignHandler) Close(c *gin.Context) {
	h.mutate(c, h.service.Close)
}

// ResetToDraft handles POST /api/v1/campaigns/{id}/reset: return a campaign to draft.
func (h *CampaignHandler) ResetToDraft(c *gin.Context) {
	h.mutate(c, h.service.ResetToDraft)
}

// Delete handles DELETE /api/v1/campaigns/{id}: delete a draft campaign.
func (h *CampaignHandler) Delete(c *gin.Context) {
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

func (h *CampaignHandler) mutate(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*campaignapp.CampaignResponse, error)) {
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
