package handlers

import (
	"errors"
	"net/http"

	"github.com/automatikblog/metrica-click-sub000/internal/metrics"
	"github.com/automatikblog/metrica-click-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

// TrackCampaign issues a fresh click identity for a campaign. The tag always
// asks for format=json; anything else is rejected so the endpoint cannot be
// abused as an open redirect or pixel.
func (h *Handler) TrackCampaign(c *gin.Context) {
	if c.Query("format") != "json" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json"})
		return
	}

	req := services.IssueRequest{
		CampaignID: c.Param("campaign_id"),
		Referrer:   c.Query("referrer"),
		Source:     c.Query("tsource"),
		FBP:        c.Query("_fbp"),
		FBC:        c.Query("_fbc"),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}

	click, err := h.identity.Issue(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		h.logger.Error("Failed to issue click", "campaign", req.CampaignID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	metrics.ClicksIssued.WithLabelValues(click.CampaignID).Inc()
	c.JSON(http.StatusOK, gin.H{"clickid": click.ClickID})
}
