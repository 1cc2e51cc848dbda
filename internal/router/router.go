package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ledgerbot/internal/handler"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	log *zap.Logger,
	m *metrics.Metrics,
	webhookSecret string,
	webhookH *handler.WebhookHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.POST("/webhook", middleware.WebhookSecret(webhookSecret), webhookH.Receive)

	return r
}
