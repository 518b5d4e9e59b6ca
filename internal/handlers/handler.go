package handlers

import (
	"log/slog"

	"github.com/automatikblog/metrica-click-sub000/internal/config"
	"github.com/automatikblog/metrica-click-sub000/internal/services"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handler struct {
	cfg        config.Config
	logger     *slog.Logger
	db         *gorm.DB
	rdb        *redis.Client
	identity   *services.IdentityService
	views      *services.ViewService
	reconciler *services.ReconcilerService
	campaigns  *services.CampaignService
	events     *services.EventLogService
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	rdb *redis.Client,
	identity *services.IdentityService,
	views *services.ViewService,
	reconciler *services.ReconcilerService,
	campaigns *services.CampaignService,
	events *services.EventLogService,
) *Handler {
	return &Handler{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		rdb:        rdb,
		identity:   identity,
		views:      views,
		reconciler: reconciler,
		campaigns:  campaigns,
		events:     events,
	}
}
