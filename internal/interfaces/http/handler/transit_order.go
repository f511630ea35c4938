package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pottingapp "github.com/potting/backend/internal/application/potting"
)

// TransitOrderHandler handles transit order (OT) API endpoints
type TransitOrderHandler struct {
	BaseHandler
	service *pottingapp.TransitOrderService
}

// NewTransitOrderHandler creates a new TransitOrderHandler
func NewTransitOrderHandler(service *pottingapp.TransitOrderService) *TransitOrderHandler {
	return &TransitOrderHandler{service: service}
}

// Create handles POST /api/v1/transit-orders: create a transit order.
func (h *TransitOrderHandler) Create(c *gin.Context) {
	var req pottingapp.CreateTransitOrderRequest
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

// GetByID handles GET /api/v1/transit-orders/{id}: get a transit order by ID.
func (h *TransitOrderHandler) GetByID(c *gin.Context) {
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

// List handles GET /api/v1/transit-orders: list transit orders.
func (h *TransitOrderHandler) List(c *gin.Context) {
	var filter pottingapp.TransitOrderListFilter
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

// AddContractAllocation handles POST /api/v1/transit-orders/{id}/allocations: split part of the order tonnage onto a customer contract.
func (h *TransitOrderHandler) AddContractAllocation(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.ContractAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.AddContractAllocation(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// LinkFormule handles POST /api/v1/transit-orders/{id}/formule: bind a validated price formula to the order.
func (h *TransitOrderHandler) LinkFormule(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.LinkFormuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.LinkFormule(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConfirmTaxesPaid handles POST /api/v1/transit-orders/{id}/taxes: record the council taxes payment.
func (h *TransitOrderHandler) ConfirmTaxesPaid(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.ConfirmTaxesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ConfirmTaxesPaid(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GenerateLots handles POST /api/v1/transit-orders/{id}/lots: generate production lots from the order tonnage.
func (h *TransitOrderHandler) GenerateLots(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	lots, err := h.service.GenerateLots(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lots)
}

// StartProduction handles POST /api/v1/transit-orders/{id}/start: start lot production.
func (h *TransitOrderHandler) StartProduction(c *gin.Context) {
	h.mutate(c, h.service.StartProduction)
}

// MarkReady handles POST /api/v1/transit-orders/{id}/ready: mark the order ready for validation.
func (h *TransitOrderHandler) MarkReady(c *gin.Context) {
	h.mutate(c, h.service.MarkReady)
}

// CollectExportDuty handles POST /api/v1/transit-orders/{id}/collect-duty: record the export duty collection.
func (h *TransitOrderHandler) CollectExportDuty(c *gin.Context) {
	h.mutate(c, h.service.CollectExportDuty)
}

// Validate handles POST /api/v1/transit-orders/{id}/validate: validate a fully potted order.
func (h *TransitOrderHandler) Validate(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.ValidateTransitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Validate(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkSold handles POST /api/v1/transit-orders/{id}/sold: mark the order sold.
func (h *TransitOrderHandler) MarkSold(c *gin.Context) {
	h.mutate(c, h.service.MarkSold)
}

// ConfirmDusPaid handles POST /api/v1/transit-orders/{id}/dus: record the DUS payment.
func (h *TransitOrderHandler) ConfirmDusPaid(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.ConfirmDusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ConfirmDusPaid(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Complete handles POST /api/v1/transit-orders/{id}/complete: close the potting workflow.
func (h *TransitOrderHandler) Complete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.ValidateTransitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Complete(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetCertificationPremium handles PUT /api/v1/transit-orders/{id}/premium: set the certification premium.
func (h *TransitOrderHandler) SetCertificationPremium(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.SetPremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.SetCertificationPremium(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterDelivery handles POST /api/v1/transit-orders/{id}/deliveries: record tonnage covered by a delivery note.
func (h *TransitOrderHandler) RegisterDelivery(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.RegisterDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.RegisterDelivery(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterInvoice handles POST /api/v1/transit-orders/{id}/invoices: invoice part of the delivered tonnage.
func (h *TransitOrderHandler) RegisterInvoice(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.RegisterInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.RegisterInvoice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel handles POST /api/v1/transit-orders/{id}/cancel: cancel a transit order.
func (h *TransitOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.CancelTransitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ResetToDraft handles POST /api/v1/transit-orders/{id}/reset: return a transit order to draft.
func (h *TransitOrderHandler) ResetToDraft(c *gin.Context) {
	h.mutate(c, h.service.ResetToDraft)
}

// Delete handles DELETE /api/v1/transit-orders/{id}: delete a draft transit order.
func (h *TransitOrderHandler) Delete(c *gin.Context) {
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

func (h *TransitOrderHandler) mutate(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*pottingapp.TransitOrderResponse, error)) {
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
