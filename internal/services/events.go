package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/automatikblog/metrica-click-sub000/internal/models"

	"gorm.io/gorm"
)

// EventLogService persists tracking audit rows off the request path. Entries
// go through a buffered channel and are dropped when the buffer is full; the
// hot endpoints never block on the event log.
type EventLogService struct {
	db      *gorm.DB
	logger  *slog.Logger
	channel chan models.TrackingEvent
}

func NewEventLogService(db *gorm.DB, logger *slog.Logger) *EventLogService {
	return &EventLogService{
		db:      db,
		logger:  logger,
		channel: make(chan models.TrackingEvent, 100),
	}
}

func (s *EventLogService) Start(ctx context.Context) {
	s.logger.Info("Event log worker starting")
	for {
		select {
		case entry := <-s.channel:
			if err := s.db.Create(&entry).Error; err != nil {
				s.logger.Error("Failed to write tracking event", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("Event log worker stopping")
			return
		}
	}
}

func (s *EventLogService) LogAction(action, entityID string, details interface{}, ip string) {
	detailBytes, _ := json.Marshal(details)

	entry := models.TrackingEvent{
		Action:    action,
		EntityID:  entityID,
		Details:   string(detailBytes),
		IPAddress: ip,
		Timestamp: time.Now(),
	}

	select {
	case s.channel <- entry:
	default:
		s.logger.Warn("Event log channel full, dropping entry")
	}
}
