package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pottingapp "github.com/potting/backend/internal/application/potting"
)

// ContainerHandler handles shipping container API endpoints
type ContainerHandler struct {
	BaseHandler
	service *pottingapp.ContainerService
}

// NewContainerHandler creates a new ContainerHandler
func NewContainerHandler(service *pottingapp.ContainerService) *ContainerHandler {
	return &ContainerHandler{service: service}
}

// Create handles POST /api/v1/containers: register a container.
func (h *ContainerHandler) Create(c *gin.Context) {
	var req pottingapp.CreateContainerRequest
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

// GetByID handles GET /api/v1/containers/{id}: get a container by ID.
func (h *ContainerHandler) GetByID(c *gin.Context) {
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

// List handles GET /api/v1/containers: list containers.
func (h *ContainerHandler) List(c *gin.Context) {
	var filter pottingapp.ContainerListFilter
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

// StartLoading handles POST /api/v1/containers/{id}/start-loading: start loading a container.
func (h *ContainerHandler) StartLoading(c *gin.Context) {
	h.mutate(c, h.service.StartLoading)
}

// FinishLoading handles POST /api/v1/containers/{id}/finish-loading: finish loading a container.
func (h *ContainerHandler) FinishLoading(c *gin.Context) {
	h.mutate(c, h.service.FinishLoading)
}

// SetSeal handles PUT /api/v1/containers/{id}/seal: seal a loaded container.
func (h *ContainerHandler) SetSeal(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req pottingapp.SetSealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.SetSeal(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Ship handles POST /api/v1/containers/{id}/ship: ship a sealed container.
func (h *ContainerHandler) Ship(c *gin.Context) {
	h.mutate(c, h.service.Ship)
}

// Reopen handles POST /api/v1/containers/{id}/reopen: reopen a loaded container.
func (h *ContainerHandler) Reopen(c *gin.Context) {
	h.mutate(c, h.service.Reopen)
}

// Delete handles DELETE /api/v1/containers/{id}: delete an empty container.
func (h *ContainerHandler) Delete(c *gin.Context) {
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

func (h *ContainerHandler) mutate(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*pottingapp.ContainerResponse, error)) {
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
