package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/webhook"
)

// maxUpdateSize caps a webhook body. Text updates are a few kilobytes.
const maxUpdateSize = 1 << 20

// UpdateProcessor handles one raw update.
type UpdateProcessor interface {
	ProcessUpdate(ctx context.Context, payload []byte) webhook.Ack
}

// WebhookHandler receives platform updates over HTTP.
type WebhookHandler struct {
	processor UpdateProcessor
	log       *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(processor UpdateProcessor, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{processor: processor, log: log}
}

// Receive handles POST /webhook
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxUpdateSize))
	if err != nil {
		HandleError(c, h.log, fmt.Errorf("%w: reading body: %v", domain.ErrValidation, err))
		return
	}
	ack := h.processor.ProcessUpdate(c.Request.Context(), body)
	c.String(ack.StatusCode, ack.Body)
}
