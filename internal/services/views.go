package services

import (
	"context"
	"log/slog"

	"github.com/automatikblog/metrica-click-sub000/internal/models"

	"gorm.io/gorm"
)

type ViewService struct {
	db       *gorm.DB
	identity *IdentityService
	enricher *Enricher
	logger   *slog.Logger
}

func NewViewService(db *gorm.DB, identity *IdentityService, enricher *Enricher, logger *slog.Logger) *ViewService {
	return &ViewService{
		db:       db,
		identity: identity,
		enricher: enricher,
		logger:   logger,
	}
}

// Register appends one PageView to an existing click. Duplicate calls append
// duplicate rows: the counter is views, not unique visits.
func (s *ViewService) Register(ctx context.Context, clickID, referrer, ipAddress, userAgent string) (*models.PageView, error) {
	click, err := s.identity.FindClick(ctx, clickID)
	if err != nil {
		return nil, err
	}

	enr := s.enricher.Enrich(ipAddress, userAgent)

	view := models.PageView{
		ClickID:        click.ClickID,
		Referrer:       referrer,
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

	if err := s.db.Create(&view).Error; err != nil {
		return nil, err
	}

	return &view, nil
}
