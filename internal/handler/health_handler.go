package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SheetLister is the part of the record sink the readiness probe touches.
type SheetLister interface {
	ListSheetNames(ctx context.Context) ([]string, error)
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	sink    SheetLister
	timeout time.Duration
	log     *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(sink SheetLister, log *zap.Logger) *HealthHandler {
	return &HealthHandler{sink: sink, timeout: 5 * time.Second, log: log}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	names, err := h.sink.ListSheetNames(ctx)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"status": "ok", "sheets": len(names)})
}
