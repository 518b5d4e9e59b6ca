package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/automatikblog/metrica-click-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCampaign(c *gin.Context) {
	var req struct {
		CampaignID string `json:"campaign_id" binding:"required"`
		Name       string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaign_id is required"})
		return
	}

	campaign, err := h.campaigns.Create(req.CampaignID, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrCampaignExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Campaign already exists"})
			return
		}
		h.logger.Error("Failed to create campaign", "campaign", req.CampaignID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

func (h *Handler) CampaignStats(c *gin.Context) {
	stats, err := h.campaigns.Stats(c.Param("campaign_id"))
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		h.logger.Error("Failed to load campaign stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RecordSpend is called by the external ads-spend sync job.
func (h *Handler) RecordSpend(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount" binding:"required"`
		Source string  `json:"source"`
		Date   string  `json:"date"` // RFC3339, defaults to now
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be RFC3339"})
			return
		}
		date = parsed
	}

	entry, err := h.campaigns.RecordSpend(c.Param("campaign_id"), req.Source, req.Amount, date)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		h.logger.Error("Failed to record spend", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) CampaignQR(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))

	png, err := h.campaigns.TrackingQR(c.Param("campaign_id"), size)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		h.logger.Error("Failed to render QR code", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
