package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ParameterStore reads and writes business parameters.
type ParameterStore interface {
	Get(ctx context.Context, key string) (string, error)
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// SnapshotInvalidator drops the cached parameter snapshot after a write.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ParameterHandler handles business parameter API endpoints
type ParameterHandler struct {
	BaseHandler
	store       ParameterStore
	invalidator SnapshotInvalidator
	logger      *zap.Logger
}

// NewParameterHandler creates a new ParameterHandler
func NewParameterHandler(store ParameterStore, invalidator SnapshotInvalidator, logger *zap.Logger) *ParameterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParameterHandler{store: store, invalidator: invalidator, logger: logger}
}

// SetParameterRequest updates one parameter value
type SetParameterRequest struct {
	Value string `json:"value" binding:"required,max=500"`
}

// ParameterResponse represents one parameter in API responses
type ParameterResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// List handles GET /api/v1/parameters: list all business parameters.
func (h *ParameterHandler) List(c *gin.Context) {
	params, err := h.store.GetAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]ParameterResponse, 0, len(params))
	for key, value := range params {
		resp = append(resp, ParameterResponse{Key: key, Value: value})
	}
	h.Success(c, resp)
}

// Get handles GET /api/v1/parameters/{key}: get one parameter by key.
func (h *ParameterHandler) Get(c *gin.Context) {
	key := c.Param("key")
	value, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ParameterResponse{Key: key, Value: value})
}

// Set handles PUT /api/v1/parameters/{key}: set a parameter value.
func (h *ParameterHandler) Set(c *gin.Context) {
	key := c.Param("key")
	var req SetParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	if err := h.store.Set(c.Request.Context(), key, req.Value); err != nil {
		h.HandleError(c, err)
		return
	}

	// stale snapshot is tolerable, so a failed invalidation only logs
	if h.invalidator != nil {
		if err := h.invalidator.Invalidate(c.Request.Context()); err != nil {
			h.logger.Warn("parameter snapshot invalidation failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}

	h.Success(c, ParameterResponse{Key: key, Value: req.Value})
}
