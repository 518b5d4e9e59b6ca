package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/automatikblog/metrica-click-sub000/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestViewService_Register(t *testing.T) {
	db := setupTestDB()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	identity := newTestIdentityService(db)
	views := NewViewService(db, identity, identity.enricher, logger)
	ctx := context.Background()

	db.Create(&models.Click{ClickID: "mc_viewcamp_100", CampaignID: "viewcamp"})

	t.Run("Appends a page view", func(t *testing.T) {
		view, err := views.Register(ctx, "mc_viewcamp_100", "https://example.com/page", "203.0.113.9", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
		assert.NoError(t, err)
		assert.Equal(t, "mc_viewcamp_100", view.ClickID)
		assert.Equal(t, "https://example.com/page", view.Referrer)
		assert.Equal(t, "Desktop", view.DeviceType)
	})

	t.Run("Duplicate calls create duplicate rows", func(t *testing.T) {
		_, err := views.Register(ctx, "mc_viewcamp_100", "", "", "")
		assert.NoError(t, err)
		_, err = views.Register(ctx, "mc_viewcamp_100", "", "", "")
		assert.NoError(t, err)

		var count int64
		db.Model(&models.PageView{}).Where("click_id = ?", "mc_viewcamp_100").Count(&count)
		assert.GreaterOrEqual(t, count, int64(3))
	})

	t.Run("Unknown click", func(t *testing.T) {
		_, err := views.Register(ctx, "mc_viewcamp_999", "", "", "")
		assert.ErrorIs(t, err, ErrClickNotFound)
	})
}
