package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/automatikblog/metrica-click-sub000/internal/models"
	"github.com/automatikblog/metrica-click-sub000/internal/repository"
	"github.com/automatikblog/metrica-click-sub000/pkg/utils"

	"gorm.io/gorm"
)

// IssueRequest carries everything the tag sends when it asks for a click
// identity.
type IssueRequest struct {
	CampaignID string
	Referrer   string
	Source     string
	FBP        string
	FBC        string
	IPAddress  string
	UserAgent  string
}

type IdentityService struct {
	db       *gorm.DB
	cache    *repository.ClickCache
	enricher *Enricher
	events   *EventLogService
	logger   *slog.Logger
}

func NewIdentityService(db *gorm.DB, cache *repository.ClickCache, enricher *Enricher, events *EventLogService, logger *slog.Logger) *IdentityService {
	return &IdentityService{
		db:       db,
		cache:    cache,
		enricher: enricher,
		events:   events,
		logger:   logger,
	}
}

// Issue creates one Click row per call. Identity reuse across visits is
// purely a client-cookie concern; the server never hands out the same id
// twice.
func (s *IdentityService) Issue(ctx context.Context, req IssueRequest) (*models.Click, error) {
	campaign, err := s.resolveCampaign(req.CampaignID)
	if err != nil {
		return nil, err
	}

	source := req.Source
	if source == "" {
		if req.Referrer != "" {
			source = "referral"
		} else {
			source = "direct"
		}
	}

	enr := s.enricher.Enrich(req.IPAddress, req.UserAgent)

	click := models.Click{
		ClickID:        utils.NewClickID(campaign.CampaignID),
		CampaignID:     campaign.CampaignID,
		Source:         source,
		Referrer:       req.Referrer,
		FBP:            req.FBP,
		FBC:            req.FBC,
		IPAddress:      enr.IPAddress,
		Country:        enr.Country,
		Region:         enr.Region,
		City:           enr.City,
		DeviceType:     enr.DeviceType,
		Browser:        enr.Browser,
		OS:             enr.OS,
		ConnectionType: enr.ConnectionType,
		IsCrawler:      enr.IsCrawler,
		IsProxy:        enr.IsProxy,
	}

	if err := s.db.Create(&click).Error; err != nil {
		return nil, err
	}

	s.cache.Set(ctx, &click)
	s.events.LogAction("ISSUE_CLICK", click.ClickID, map[string]interface{}{
		"campaign": click.CampaignID,
		"source":   click.Source,
	}, req.IPAddress)

	return &click, nil
}

// resolveCampaign loads the owning campaign. The literal campaign id
// "organic" is auto-created on first use; everything else must exist.
func (s *IdentityService) resolveCampaign(campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := s.db.Where("campaign_id = ?", campaignID).First(&campaign).Error
	if err == nil {
		return &campaign, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if campaignID != models.OrganicCampaignID {
		return nil, ErrCampaignNotFound
	}

	campaign = models.Campaign{
		CampaignID: models.OrganicCampaignID,
		Name:       "Organic Traffic",
		Status:     "active",
	}
	if err := s.db.Create(&campaign).Error; err != nil {
		return nil, err
	}
	s.logger.Info("Auto-created organic campaign")
	return &campaign, nil
}

// FindClick resolves a click identity through the cache, then the database.
func (s *IdentityService) FindClick(ctx context.Context, clickID string) (*models.Click, error) {
	if click, ok := s.cache.Get(ctx, clickID); ok {
		return click, nil
	}

	var click models.Click
	if err := s.db.Where("click_id = ?", clickID).First(&click).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClickNotFound
		}
		return nil, err
	}

	s.cache.Set(ctx, &click)
	return &click, nil
}
