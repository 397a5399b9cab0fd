package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"campaign-webhooks/internal/webhook"
	"campaign-webhooks/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "ActiveCampaign Webhook Handler"
	serviceVersion = "3.0"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call the webhook service,
// return JSON.
//
// A Handlers value is either Ready (service + store wired) or
// Unavailable (storage failed at startup); routes stay registered in
// both cases so the degraded process still answers with 503 instead of
// connection errors. No nil checks are scattered through handlers —
// ready() is the single gate.
type Handlers struct {
	svc         *webhook.Service
	store       webhook.Store
	backend     string
	unavailable string
}

func NewHandlers(svc *webhook.Service, store webhook.Store, backend string) Handlers {
	return Handlers{svc: svc, store: store, backend: backend}
}

func NewUnavailableHandlers(reason string) Handlers {
	if reason == "" {
		reason = "storage not initialized"
	}
	return Handlers{unavailable: reason}
}

func (h Handlers) ready() bool { return h.unavailable == "" }

func (h Handlers) abortUnavailable(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Database not configured"})
}

// HandleWebhook is the main ingestion endpoint. The signature
// middleware has already run (and stashed the raw body) by the time
// this executes.
func (h Handlers) HandleWebhook(c *gin.Context) {
	if !h.ready() {
		h.abortUnavailable(c)
		return
	}

	body := rawBody(c)
	payload, err := webhook.Normalize(body, c.ContentType())
	if err != nil {
		logger.FromGin(c).Error("no data in webhook request", "content_type", c.ContentType(), "body_len", len(body))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}

	res, err := h.svc.Process(c.Request.Context(), payload)
	if err != nil {
		logger.FromGin(c).Error("webhook processing failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleHealth is polled by the PaaS. Stats failures degrade to an
// empty snapshot rather than flapping the health check; only a dead
// storage connection reports unhealthy.
func (h Handlers) HandleHealth(c *gin.Context) {
	if !h.ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  h.unavailable,
		})
		return
	}

	if err := h.store.Ping(c.Request.Context()); err != nil {
		logger.FromGin(c).Error("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("stats fetch failed during health check", "err", err)
		stats = webhook.Stats{EventTypes: map[string]int64{}}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
		"version":   serviceVersion,
		"database":  h.backend,
		"stats":     stats,
	})
}

// HandleTestGet describes the test endpoint.
func (h Handlers) HandleTestGet(c *gin.Context) {
	if !h.ready() {
		h.abortUnavailable(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Test endpoint is working!",
		"method":       http.MethodGet,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"instructions": "Send POST request with JSON data to test webhook processing",
		"database":     h.backend,
	})
}

// HandleTestPost runs the full pipeline against the posted JSON, or a
// built-in contact_update fixture when the body is empty or invalid.
func (h Handlers) HandleTestPost(c *gin.Context) {
	if !h.ready() {
		h.abortUnavailable(c)
		return
	}

	var payload webhook.Payload
	if err := json.Unmarshal(rawBody(c), &payload); err != nil || len(payload) == 0 {
		payload = testFixture()
	}

	res, err := h.svc.Process(c.Request.Context(), payload)
	if err != nil {
		logger.FromGin(c).Error("test webhook processing failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func testFixture() webhook.Payload {
	return webhook.Payload{
		"type": webhook.EventContactUpdate,
		"contact": map[string]any{
			"email":     "test@example.com",
			"firstName": "Test",
			"lastName":  "User",
			"phone":     "555-1234",
		},
	}
}

// HandleLogs returns the most recent audit entries, newest first.
// Admin bearer auth has already run in the middleware chain.
func (h Handlers) HandleLogs(c *gin.Context) {
	if !h.ready() {
		h.abortUnavailable(c)
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	logs, err := h.store.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		logger.FromGin(c).Error("log fetch failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}
	if logs == nil {
		logs = []webhook.LogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

// HandleStats returns aggregate counts over the audit trail.
func (h Handlers) HandleStats(c *gin.Context) {
	if !h.ready() {
		h.abortUnavailable(c)
		return
	}

	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("stats fetch failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HandleRoot serves the static service descriptor.
func (h Handlers) HandleRoot(c *gin.Context) {
	database := "Not configured"
	status := "degraded"
	if h.ready() {
		database = h.backend
		status = "running"
	}
	c.JSON(http.StatusOK, gin.H{
		"service":  serviceName,
		"status":   status,
		"version":  serviceVersion,
		"database": database,
		"endpoints": gin.H{
			"webhook": "/webhook/activecampaign",
			"health":  "/webhook/health",
			"test":    "/webhook/test",
			"logs":    "/webhook/logs (requires auth)",
			"stats":   "/webhook/stats (requires auth)",
		},
	})
}
