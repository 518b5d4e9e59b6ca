package services

import (
	"bytes"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/automatikblog/metrica-click-sub000/internal/config"
	"github.com/automatikblog/metrica-click-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newTestCampaignService(db *gorm.DB) *CampaignService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	events := NewEventLogService(db, logger)
	cfg := config.Config{TrackingBaseURL: "https://t.example.com"}
	return NewCampaignService(db, cfg, events, logger)
}

func TestCampaignService_Create(t *testing.T) {
	db := setupTestDB()
	service := newTestCampaignService(db)

	t.Run("Create", func(t *testing.T) {
		campaign, err := service.Create("campA", "Campaign A")
		assert.NoError(t, err)
		assert.Equal(t, "campA", campaign.CampaignID)
		assert.Equal(t, "active", campaign.Status)
		assert.Equal(t, 0.0, campaign.Spend)
	})

	t.Run("Duplicate id rejected", func(t *testing.T) {
		_, err := service.Create("campA", "Again")
		assert.ErrorIs(t, err, ErrCampaignExists)
	})
}

func TestCampaignService_RecordSpend(t *testing.T) {
	db := setupTestDB()
	service := newTestCampaignService(db)

	_, err := service.Create("campSpend", "Spend")
	assert.NoError(t, err)

	t.Run("Unknown campaign", func(t *testing.T) {
		_, err := service.RecordSpend("nope", "facebook", 10, time.Now())
		assert.ErrorIs(t, err, ErrCampaignNotFound)
	})

	t.Run("Creates cost row and bumps total", func(t *testing.T) {
		entry, err := service.RecordSpend("campSpend", "", 25.5, time.Time{})
		assert.NoError(t, err)
		assert.Equal(t, "facebook", entry.Source)
		assert.NotEmpty(t, entry.EntryID)
		assert.False(t, entry.Date.IsZero())

		_, err = service.RecordSpend("campSpend", "google", 4.5, time.Now())
		assert.NoError(t, err)

		campaign, err := service.Get("campSpend")
		assert.NoError(t, err)
		assert.Equal(t, 30.0, campaign.Spend)

		var rows int64
		db.Model(&models.AdSpend{}).Where("campaign_id = ?", "campSpend").Count(&rows)
		assert.Equal(t, int64(2), rows)
	})
}

func TestCampaignService_Stats(t *testing.T) {
	db := setupTestDB()
	service := newTestCampaignService(db)

	_, err := service.Create("campStats", "Stats")
	assert.NoError(t, err)

	db.Create(&models.Click{ClickID: "mc_campStats_1", CampaignID: "campStats", Country: "Brazil", DeviceType: "Mobile", Source: "facebook"})
	db.Create(&models.Click{ClickID: "mc_campStats_2", CampaignID: "campStats", Country: "Brazil", DeviceType: "Desktop", Source: "direct"})
	db.Create(&models.PageView{ClickID: "mc_campStats_1"})
	db.Create(&models.PageView{ClickID: "mc_campStats_1"})
	clickID := "mc_campStats_1"
	db.Create(&models.Conversion{ClickID: &clickID, Type: "purchase", Value: 99, Currency: "BRL", CampaignID: strPtr("campStats")})

	t.Run("Aggregates", func(t *testing.T) {
		stats, err := service.Stats("campStats")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), stats.ClickCount)
		assert.Equal(t, int64(2), stats.ViewCount)
		assert.Len(t, stats.Conversions, 1)
		assert.Equal(t, "Brazil", stats.CountryStats[0].Label)
		assert.Equal(t, int64(2), stats.CountryStats[0].Count)
		assert.Len(t, stats.DeviceStats, 2)
	})

	t.Run("Unknown campaign", func(t *testing.T) {
		_, err := service.Stats("missing")
		assert.ErrorIs(t, err, ErrCampaignNotFound)
	})
}

func TestCampaignService_TrackingQR(t *testing.T) {
	db := setupTestDB()
	service := newTestCampaignService(db)

	_, err := service.Create("campQR", "QR")
	assert.NoError(t, err)

	t.Run("URL", func(t *testing.T) {
		assert.Equal(t, "https://t.example.com/track/campQR?format=json", service.TrackingURL("campQR"))
	})

	t.Run("PNG output", func(t *testing.T) {
		png, err := service.TrackingQR("campQR", 0)
		assert.NoError(t, err)
		// PNG magic bytes
		assert.True(t, bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}))
	})

	t.Run("Unknown campaign", func(t *testing.T) {
		_, err := service.TrackingQR("missing", 128)
		assert.ErrorIs(t, err, ErrCampaignNotFound)
	})
}

func strPtr(s string) *string { return &s }
