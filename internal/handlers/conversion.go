package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/automatikblog/metrica-click-sub000/internal/metrics"
	"github.com/automatikblog/metrica-click-sub000/internal/services"
	"github.com/automatikblog/metrica-click-sub000/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ConversionWebhook accepts arbitrary JSON from external checkout/payment
// platforms and reconciles it against issued clicks. Every call gets a fresh
// webhook id for tracing, independent of the per-click idempotency.
func (h *Handler) ConversionWebhook(c *gin.Context) {
	start := time.Now()
	webhookID := utils.NewRequestID()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.webhookError(c, http.StatusBadRequest, "failed to read body", start, webhookID)
		return
	}

	result, err := h.reconciler.ProcessWebhook(c.Request.Context(), body, webhookID)
	metrics.WebhookDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, services.ErrMissingIdentity) || errors.Is(err, services.ErrBadPayload) {
			metrics.ConversionsProcessed.WithLabelValues("rejected").Inc()
			h.webhookError(c, http.StatusBadRequest, err.Error(), start, webhookID)
			return
		}
		h.logger.Error("Webhook processing failed", "webhook_id", webhookID, "error", err)
		metrics.ConversionsProcessed.WithLabelValues("rejected").Inc()
		h.webhookError(c, http.StatusInternalServerError, "Internal server error", start, webhookID)
		return
	}

	outcome := "new"
	if result.Duplicate {
		outcome = "duplicate"
	} else if result.Click == nil {
		outcome = "direct"
	}
	metrics.ConversionsProcessed.WithLabelValues(outcome).Inc()

	resp := gin.H{
		"success":          true,
		"conversionId":     result.Conversion.ID,
		"clickId":          nil,
		"campaignId":       nil,
		"duplicate":        result.Duplicate,
		"processingTimeMs": time.Since(start).Milliseconds(),
		"webhookId":        webhookID,
	}
	if result.Click != nil {
		resp["clickId"] = result.Click.ClickID
		resp["campaignId"] = result.Click.CampaignID
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) webhookError(c *gin.Context, status int, msg string, start time.Time, webhookID string) {
	c.JSON(status, gin.H{
		"success":          false,
		"error":            msg,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"processingTimeMs": time.Since(start).Milliseconds(),
		"webhookId":        webhookID,
	})
}

// CreateConversion is the first-party conversion API used by the tag's
// global conversion function.
func (h *Handler) CreateConversion(c *gin.Context) {
	var req struct {
		ClickID        string  `json:"clickId" binding:"required"`
		ConversionType string  `json:"conversionType"`
		Value          float64 `json:"value"`
		Currency       string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clickId is required"})
		return
	}

	result, err := h.reconciler.ProcessAPI(c.Request.Context(), req.ClickID, req.ConversionType, req.Value, req.Currency, utils.NewRequestID())
	if err != nil {
		if errors.Is(err, services.ErrClickNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Click not found"})
			return
		}
		h.logger.Error("Conversion API failed", "click_id", req.ClickID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	outcome := "new"
	if result.Duplicate {
		outcome = "duplicate"
	}
	metrics.ConversionsProcessed.WithLabelValues(outcome).Inc()

	c.JSON(http.StatusOK, result.Conversion)
}
