package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pricingapp "github.com/potting/backend/internal/application/pricing"
)

// FormulaHandler handles price formula (FO) API endpoints
type FormulaHandler struct {
	BaseHandler
	service *pricingapp.FormulaService
}

// NewFormulaHandler creates a new FormulaHandler
func NewFormulaHandler(service *pricingapp.FormulaService) *FormulaHandler {
	return &FormulaHandler{service: service}
}

// Create handles POST /api/v1/formulas: create a price formula against a confirmation envelope.
func (h *FormulaHandler) Create(c *gin.Context) {
	var req pricingapp.CreateFormulaRequest
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

// GetByID handles GET /api/v1/formulas/{id}: get a formula by ID.
func (h *FormulaHandler) GetByID(c *gin.Context) {
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

// List handles GET /api/v1/formulas: list formulas.
func (h *FormulaHandler) List(c *gin.Context) {
	var filter pricingapp.FormulaListFilter
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

// AddTaxLine handles POST /api/v1/formulas/{id}/taxes: add a tax line to a draft formula.
func (h *FormulaHandler) AddTaxLine(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pricingapp.TaxLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.AddTaxLine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveTaxLine handles DELETE /api/v1/formulas/{id}/taxes/{line_id}: remove a tax line from a draft formula.
func (h *FormulaHandler) RemoveTaxLine(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	lineID, err := uuid.Parse(c.Param("line_id"))
	if err != nil {
		h.BadRequest(c, "Invalid tax line ID format")
		return
	}

	resp, err := h.service.RemoveTaxLine(c.Request.Context(), id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Validate handles POST /api/v1/formulas/{id}/validate: validate a formula and debit the confirmation envelope.
func (h *FormulaHandler) Validate(c *gin.Context) {
	h.mutate(c, h.service.Validate)
}

// MarkAvantVentePaid handles POST /api/v1/formulas/{id}/pay-avant-vente: record the avant-vente installment payment.
func (h *FormulaHandler) MarkAvantVentePaid(c *gin.Context) {
	h.mutate(c, h.service.MarkAvantVentePaid)
}

// MarkApresVentePaid handles POST /api/v1/formulas/{id}/pay-apres-vente: record the apres-vente installment payment.
func (h *FormulaHandler) MarkApresVentePaid(c *gin.Context) {
	h.mutate(c, h.service.MarkApresVentePaid)
}

// Cancel handles POST /api/v1/formulas/{id}/cancel: cancel a formula and release its envelope debit.
func (h *FormulaHandler) Cancel(c *gin.Context) {
	h.mutate(c, h.service.Cancel)
}

// Delete handles DELETE /api/v1/formulas/{id}: delete a draft formula.
func (h *FormulaHandler) Delete(c *gin.Context) {
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

func (h *FormulaHandler) mutate(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*pricingapp.FormulaResponse, error)) {
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
