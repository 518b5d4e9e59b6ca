package handlers

import (
	"github.com/automatikblog/metrica-click-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public tag endpoints, rate limited per client IP
	public := r.Group("/")
	if rateLimiter != nil {
		public.Use(h.RateLimitMiddleware(rateLimiter))
	}
	{
		public.GET("/track/:campaign_id", h.TrackCampaign)
		public.GET("/view", h.RegisterView)
		public.POST("/agent/errors", h.AgentError)
	}

	// Conversion intake: webhooks from external checkout platforms plus the
	// first-party API. Webhooks are never rate limited; a payment platform
	// that gets a 429 may stop retrying.
	r.POST("/conversion", h.ConversionWebhook)
	r.POST("/api/conversions", h.CreateConversion)

	// Campaign management
	r.POST("/api/campaigns", h.CreateCampaign)
	r.GET("/api/campaigns/:campaign_id/stats", h.CampaignStats)
	r.POST("/api/campaigns/:campaign_id/spend", h.RecordSpend)
	r.GET("/api/campaigns/:campaign_id/qr", h.CampaignQR)

	return r
}
