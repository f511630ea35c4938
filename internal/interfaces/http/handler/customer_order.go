package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	salesapp "github.com/potting/backend/internal/application/sales"
)

// CustomerOrderHandler handles customer contract API endpoints
type CustomerOrderHandler struct {
	BaseHandler
	service *salesapp.CustomerOrderService
}

// NewCustomerOrderHandler creates a new CustomerOrderHandler
func NewCustomerOrderHandler(service *salesapp.CustomerOrderService) *CustomerOrderHandler {
	return &CustomerOrderHandler{service: service}
}

// Create handles POST /api/v1/orders: register a customer contract.
func (h *CustomerOrderHandler) Create(c *gin.Context) {
	var req salesapp.CreateOrderRequest
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

// GetByID handles GET /api/v1/orders/{id}: get an order by ID.
func (h *CustomerOrderHandler) GetByID(c *gin.Context) {
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

// List handles GET /api/v1/orders: list customer contracts.
func (h *CustomerOrderHandler) List(c *gin.Context) {
	var filter salesapp.OrderListFilter
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

// AddAllocation handles POST /api/v1/orders/{id}/allocations: allocate confirmation tonnage to the contract.
func (h *CustomerOrderHandler) AddAllocation(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req salesapp.AddAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.AddAllocation(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveAllocation handles DELETE /api/v1/orders/{id}/allocations/{confirmation_id}: remove an unused confirmation allocation.
func (h *CustomerOrderHandler) RemoveAllocation(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	confirmationID, err := uuid.Parse(c.Param("confirmation_id"))
	if err != nil {
		h.BadRequest(c, "Invalid confirmation ID format")
		return
	}

	resp, err := h.service.RemoveAllocation(c.Request.Context(), id, confirmationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Confirm handles POST /api/v1/orders/{id}/confirm: confirm a contract.
func (h *CustomerOrderHandler) Confirm(c *gin.Context) {
	h.mutate(c, h.service.Confirm)
}

// MarkDone handles POST /api/v1/orders/{id}/done: close a fully delivered contract.
func (h *CustomerOrderHandler) MarkDone(c *gin.Context) {
	h.mutate(c, h.service.MarkDone)
}

// Cancel handles POST /api/v1/orders/{id}/cancel: cancel a contract.
func (h *CustomerOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req salesapp.CancelOrderRequest
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

// ResetToDraft handles POST /api/v1/orders/{id}/reset: return a confirmed contract to draft.
func (h *CustomerOrderHandler) ResetToDraft(c *gin.Context) {
	h.mutate(c, h.service.ResetToDraft)
}

// Delete handles DELETE /api/v1/orders/{id}: delete a draft contract.
func (h *CustomerOrderHandler) Delete(c *gin.Context) {
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

func (h *CustomerOrderHandler) mutate(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*salesapp.OrderResponse, error)) {
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
