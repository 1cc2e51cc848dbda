package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/handler"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/middleware"
	"ledgerbot/internal/router"
	"ledgerbot/internal/webhook"
)

type lister struct{}

func (lister) ListSheetNames(context.Context) ([]string, error) { return []string{"Лист1"}, nil }

type eventCounter struct{ n int }

func (e *eventCounter) Handle(context.Context, domain.Event) error {
	e.n++
	return nil
}

func setup(t *testing.T) (*gin.Engine, *eventCounter) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	m := metrics.New()
	events := &eventCounter{}
	p := webhook.NewProcessor(events, 0, m, log)
	r := router.Setup(log, m, "s3cr3t",
		handler.NewWebhookHandler(p, log),
		handler.NewHealthHandler(lister{}, log))
	return r, events
}

func TestSetup_Webhook(t *testing.T) {
	r, events := setup(t)
	body := `{"update_id":1,"message":{"message_id":5,"date":0,"chat":{"id":77,"type":"private"},"text":"привет"}}`

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(middleware.SecretTokenHeader, "s3cr3t")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Equal(t, 1, events.n)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 1, events.n)
}

func TestSetup_Metrics(t *testing.T) {
	r, _ := setup(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{broken`))
	req.Header.Set(middleware.SecretTokenHeader, "s3cr3t")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `ledgerbot_webhook_responses_total{code="500"} 1`)
}

func TestSetup_Health(t *testing.T) {
	r, _ := setup(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
