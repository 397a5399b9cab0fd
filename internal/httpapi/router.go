package httpapi

import (
	"log/slog"

	"campaign-webhooks/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RouterConfig carries the request-filtering secrets for the
// middleware chain.
type RouterConfig struct {
	WebhookSecret string
	AdminToken    string
}

// NewRouter wires middleware and routes. The chain per route is
// explicit and ordered: recovery, request logging, then any
// route-specific filter (signature check or admin bearer token), then
// the handler. Keep this file free of business logic.
func NewRouter(log *slog.Logger, h Handlers, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	r.GET("/", h.HandleRoot)

	wh := r.Group("/webhook")
	{
		wh.POST("/activecampaign", h.VerifySignature(cfg.WebhookSecret), h.HandleWebhook)
		wh.GET("/health", h.HandleHealth)
		wh.GET("/test", h.HandleTestGet)
		wh.POST("/test", h.HandleTestPost)

		admin := wh.Group("", RequireAdminToken(cfg.AdminToken))
		admin.GET("/logs", h.HandleLogs)
		admin.GET("/stats", h.HandleStats)
	}

	return r
}
