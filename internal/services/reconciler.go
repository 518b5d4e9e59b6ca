package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/automatikblog/metrica-click-sub000/internal/config"
	"github.com/automatikblog/metrica-click-sub000/internal/models"
	"github.com/automatikblog/metrica-click-sub000/internal/repository"

	"gorm.io/gorm"
)

// ReconcileResult is the outcome of one conversion webhook or first-party
// API call.
type ReconcileResult struct {
	Conversion *models.Conversion
	Click      *models.Click // nil for direct/unattributed conversions
	Duplicate  bool
}

// ReconcilerService matches inbound conversion notifications back to issued
// clicks: identity extraction, click matching, duplicate suppression, payload
// normalization, persistence and the campaign aggregate update.
type ReconcilerService struct {
	db       *gorm.DB
	cfg      config.Config
	cache    *repository.ClickCache
	identity *IdentityService
	events   *EventLogService
	logger   *slog.Logger
}

func NewReconcilerService(db *gorm.DB, cfg config.Config, cache *repository.ClickCache, identity *IdentityService, events *EventLogService, logger *slog.Logger) *ReconcilerService {
	return &ReconcilerService{
		db:       db,
		cfg:      cfg,
		cache:    cache,
		identity: identity,
		events:   events,
		logger:   logger,
	}
}

// ProcessWebhook runs the full pipeline against an arbitrary JSON body.
// A payload with no recoverable identity is a validation error; an identity
// that matches no click degrades to a direct conversion instead of failing.
func (s *ReconcilerService) ProcessWebhook(ctx context.Context, body []byte, webhookID string) (*ReconcileResult, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrBadPayload
	}

	sessionID, ok := ExtractIdentity(payload)
	if !ok {
		return nil, ErrMissingIdentity
	}

	click, err := s.matchClick(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if click != nil {
		if existing, found, err := s.existingConversion(click.ClickID); err != nil {
			return nil, err
		} else if found {
			s.logger.Info("Duplicate conversion suppressed", "click_id", click.ClickID, "webhook_id", webhookID)
			return &ReconcileResult{Conversion: existing, Click: click, Duplicate: true}, nil
		}
	}

	norm := NormalizePayload(payload, s.cfg.DefaultCurrency)
	return s.reconcile(ctx, click, norm, webhookID)
}

// ProcessAPI is the first-party conversion path. Unlike the webhook, the
// click identity is explicit and must exist.
func (s *ReconcilerService) ProcessAPI(ctx context.Context, clickID, conversionType string, value float64, currency, requestID string) (*ReconcileResult, error) {
	click, err := s.identity.FindClick(ctx, clickID)
	if err != nil {
		return nil, err
	}

	if existing, found, err := s.existingConversion(click.ClickID); err != nil {
		return nil, err
	} else if found {
		return &ReconcileResult{Conversion: existing, Click: click, Duplicate: true}, nil
	}

	if conversionType == "" {
		conversionType = models.ConversionTypePurchase
	}
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	norm := NormalizedConversion{Type: conversionType, Value: value, Currency: currency}
	return s.reconcile(ctx, click, norm, requestID)
}

// matchClick resolves an extracted session identity to a click. Exact match
// only, unless the legacy fuzzy fallback is enabled: that scans stored
// referrer/source fields for the identity as a substring and is known to
// mis-attribute. No match is not an error; the conversion becomes direct.
func (s *ReconcilerService) matchClick(ctx context.Context, sessionID string) (*models.Click, error) {
	click, err := s.identity.FindClick(ctx, sessionID)
	if err == nil {
		return click, nil
	}
	if !errors.Is(err, ErrClickNotFound) {
		return nil, err
	}

	if s.cfg.FuzzyMatchFallback {
		var candidate models.Click
		err := s.db.Where("referrer LIKE ? OR source LIKE ?", "%"+sessionID+"%", "%"+sessionID+"%").
			Order("created_at desc").First(&candidate).Error
		if err == nil {
			s.logger.Warn("Fuzzy-matched conversion to click", "session_id", sessionID, "click_id", candidate.ClickID)
			return &candidate, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	s.logger.Info("No click matched, recording direct conversion", "session_id", sessionID)
	return nil, nil
}

func (s *ReconcilerService) existingConversion(clickID string) (*models.Conversion, bool, error) {
	var existing models.Conversion
	err := s.db.Where("click_id = ?", clickID).First(&existing).Error
	if err == nil {
		return &existing, true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	return nil, false, err
}

// reconcile persists the conversion, stamps the click (first write only) and
// bumps the campaign aggregate with atomic increments so concurrent webhooks
// never lose an update.
func (s *ReconcilerService) reconcile(ctx context.Context, click *models.Click, norm NormalizedConversion, webhookID string) (*ReconcileResult, error) {
	conversion := models.Conversion{
		Type:      norm.Type,
		Value:     norm.Value,
		Currency:  norm.Currency,
		WebhookID: webhookID,
	}
	if click != nil {
		conversion.ClickID = &click.ClickID
		conversion.CampaignID = &click.CampaignID
	}

	if err := s.db.Create(&conversion).Error; err != nil {
		return nil, err
	}

	if click != nil {
		now := time.Now()
		s.db.Model(&models.Click{}).
			Where("click_id = ? AND conversion_value IS NULL", click.ClickID).
			UpdateColumns(map[string]interface{}{
				"conversion_value": norm.Value,
				"converted_at":     now,
			})
		s.cache.Invalidate(ctx, click.ClickID)

		err := s.db.Model(&models.Campaign{}).
			Where("campaign_id = ?", click.CampaignID).
			UpdateColumns(map[string]interface{}{
				"revenue":          gorm.Expr("revenue + ?", norm.Value),
				"conversion_count": gorm.Expr("conversion_count + ?", 1),
			}).Error
		if err != nil {
			s.logger.Error("Failed to update campaign aggregate", "campaign", click.CampaignID, "error", err)
			return nil, err
		}
	}

	entity := webhookID
	if click != nil {
		entity = click.ClickID
	}
	s.events.LogAction("CONVERSION", entity, map[string]interface{}{
		"type":     norm.Type,
		"value":    norm.Value,
		"currency": norm.Currency,
		"shape":    norm.Shape.String(),
		"direct":   click == nil,
	}, "")

	return &ReconcileResult{Conversion: &conversion, Click: click}, nil
}
