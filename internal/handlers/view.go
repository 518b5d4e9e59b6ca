package handlers

import (
	"errors"
	"net/http"

	"github.com/automatikblog/metrica-click-sub000/internal/metrics"
	"github.com/automatikblog/metrica-click-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RegisterView(c *gin.Context) {
	clickID := c.Query("clickid")
	if clickID == "" {
		c.String(http.StatusBadRequest, "clickid is required")
		return
	}

	_, err := h.views.Register(c.Request.Context(), clickID, c.Query("referrer"), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrClickNotFound) {
			c.String(http.StatusNotFound, "Click not found")
			return
		}
		h.logger.Error("Failed to register view", "click_id", clickID, "error", err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	metrics.ViewsRecorded.Inc()
	c.String(http.StatusOK, "OK")
}

// AgentError is the best-effort sink for errors the tag reports from the
// browser. It never fails the caller; a broken error reporter must not spawn
// more error reports.
func (h *Handler) AgentError(c *gin.Context) {
	var report struct {
		Message string `json:"message"`
		Stack   string `json:"stack"`
		PageURL string `json:"url"`
		ClickID string `json:"clickid"`
	}
	if err := c.ShouldBindJSON(&report); err != nil {
		c.Status(http.StatusNoContent)
		return
	}

	h.logger.Warn("Agent error report",
		"message", report.Message,
		"url", report.PageURL,
		"clickid", report.ClickID,
		"ip", c.ClientIP(),
	)
	c.Status(http.StatusNoContent)
}
