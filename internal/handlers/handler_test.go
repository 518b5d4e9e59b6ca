package handlers

import (
	"log/slog"
	"os"

	"github.com/automatikblog/metrica-click-sub000/internal/config"
	"github.com/automatikblog/metrica-click-sub000/internal/models"
	"github.com/automatikblog/metrica-click-sub000/internal/repository"
	"github.com/automatikblog/metrica-click-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func setupTestHandler() (*Handler, *gorm.DB) {
	db, _ := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	db.AutoMigrate(
		&models.Campaign{},
		&models.Click{},
		&models.PageView{},
		&models.Conversion{},
		&models.AdSpend{},
		&models.TrackingEvent{},
	)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Config{
		DefaultCurrency: "BRL",
		TrackingBaseURL: "http://localhost:8080",
	}

	// Dummy redis client (not connected) with no retries; the click cache
	// degrades to misses.
	rdb := redis.NewClient(&redis.Options{
		Addr:       "localhost:1",
		MaxRetries: -1,
	})
	cache := repository.NewClickCache(nil)

	geoIP := services.NewGeoIPService(cfg, logger)
	enricher := services.NewEnricher(geoIP)
	events := services.NewEventLogService(db, logger)
	identity := services.NewIdentityService(db, cache, enricher, events, logger)
	views := services.NewViewService(db, identity, enricher, logger)
	reconciler := services.NewReconcilerService(db, cfg, cache, identity, events, logger)
	campaigns := services.NewCampaignService(db, cfg, events, logger)

	h := NewHandler(cfg, logger, db, rdb, identity, views, reconciler, campaigns, events)
	return h, db
}

func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return h.SetupRouter(nil)
}
