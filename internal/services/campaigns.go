package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/automatikblog/metrica-click-sub000/internal/config"
	"github.com/automatikblog/metrica-click-sub000/internal/models"
	"github.com/automatikblog/metrica-click-sub000/pkg/utils"

	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

type CampaignStats struct {
	Campaign     models.Campaign     `json:"campaign"`
	ClickCount   int64               `json:"click_count"`
	ViewCount    int64               `json:"view_count"`
	Conversions  []models.Conversion `json:"recent_conversions"`
	CountryStats []CountStat         `json:"country_stats"`
	DeviceStats  []CountStat         `json:"device_stats"`
	SourceStats  []CountStat         `json:"source_stats"`
}

type CountStat struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type CampaignService struct {
	db     *gorm.DB
	cfg    config.Config
	events *EventLogService
	logger *slog.Logger
}

func NewCampaignService(db *gorm.DB, cfg config.Config, events *EventLogService, logger *slog.Logger) *CampaignService {
	return &CampaignService{
		db:     db,
		cfg:    cfg,
		events: events,
		logger: logger,
	}
}

func (s *CampaignService) Create(campaignID, name string) (*models.Campaign, error) {
	var existing models.Campaign
	err := s.db.Where("campaign_id = ?", campaignID).First(&existing).Error
	if err == nil {
		return nil, ErrCampaignExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	campaign := models.Campaign{
		CampaignID: campaignID,
		Name:       name,
		Status:     "active",
	}
	if err := s.db.Create(&campaign).Error; err != nil {
		return nil, err
	}

	s.events.LogAction("CREATE_CAMPAIGN", campaignID, map[string]string{"name": name}, "")
	return &campaign, nil
}

func (s *CampaignService) Get(campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.Where("campaign_id = ?", campaignID).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// Stats assembles the read model the dashboard consumes: the denormalized
// totals plus click/view counts and breakdowns over the campaign's clicks.
func (s *CampaignService) Stats(campaignID string) (*CampaignStats, error) {
	campaign, err := s.Get(campaignID)
	if err != nil {
		return nil, err
	}

	stats := CampaignStats{Campaign: *campaign}

	s.db.Model(&models.Click{}).Where("campaign_id = ?", campaignID).Count(&stats.ClickCount)
	s.db.Model(&models.PageView{}).
		Where("click_id IN (?)", s.db.Model(&models.Click{}).Select("click_id").Where("campaign_id = ?", campaignID)).
		Count(&stats.ViewCount)

	s.db.Where("campaign_id = ?", campaignID).Order("created_at desc").Limit(50).Find(&stats.Conversions)

	s.db.Model(&models.Click{}).Where("campaign_id = ?", campaignID).
		Select("country as label, count(*) as count").Group("country").Order("count desc").Scan(&stats.CountryStats)
	s.db.Model(&models.Click{}).Where("campaign_id = ?", campaignID).
		Select("device_type as label, count(*) as count").Group("device_type").Order("count desc").Scan(&stats.DeviceStats)
	s.db.Model(&models.Click{}).Where("campaign_id = ?", campaignID).
		Select("source as label, count(*) as count").Group("source").Order("count desc").Scan(&stats.SourceStats)

	return &stats, nil
}

// RecordSpend is the write interface used by the ads-spend sync job. The
// campaign total moves atomically with the cost row.
func (s *CampaignService) RecordSpend(campaignID, source string, amount float64, date time.Time) (*models.AdSpend, error) {
	if _, err := s.Get(campaignID); err != nil {
		return nil, err
	}
	if source == "" {
		source = "facebook"
	}
	if date.IsZero() {
		date = time.Now()
	}

	entry := models.AdSpend{
		EntryID:    utils.NewRequestID(),
		CampaignID: campaignID,
		Source:     source,
		Amount:     amount,
		Date:       date,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}

	err := s.db.Model(&models.Campaign{}).
		Where("campaign_id = ?", campaignID).
		UpdateColumn("spend", gorm.Expr("spend + ?", amount)).Error
	if err != nil {
		return nil, err
	}

	s.events.LogAction("SPEND_IMPORT", campaignID, map[string]interface{}{
		"source": source,
		"amount": amount,
	}, "")

	return &entry, nil
}

// TrackingURL is the tag endpoint advertised for a campaign.
func (s *CampaignService) TrackingURL(campaignID string) string {
	return fmt.Sprintf("%s/track/%s?format=json", s.cfg.TrackingBaseURL, campaignID)
}

// TrackingQR renders the campaign's tracking URL as a QR code PNG, for
// offline-to-online tagging.
func (s *CampaignService) TrackingQR(campaignID string, size int) ([]byte, error) {
	if _, err := s.Get(campaignID); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(s.TrackingURL(campaignID), qrcode.Medium, size)
}
