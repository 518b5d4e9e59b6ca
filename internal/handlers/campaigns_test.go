package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/automatikblog/metrica-click-sub000/internal/models"
	"github.com/automatikblog/metrica-click-sub000/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestCreateCampaignEndpoint(t *testing.T) {
	h, _ := setupTestHandler()
	r := setupTestRouter(h)

	t.Run("Creates campaign", func(t *testing.T) {
		w := postJSON(r, "/api/campaigns", `{"campaign_id":"hndA","name":"Handler A"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		var campaign models.Campaign
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &campaign))
		assert.Equal(t, "hndA", campaign.CampaignID)
		assert.Equal(t, "active", campaign.Status)
	})

	t.Run("Rejects duplicate", func(t *testing.T) {
		w := postJSON(r, "/api/campaigns", `{"campaign_id":"hndA"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Rejects missing id", func(t *testing.T) {
		w := postJSON(r, "/api/campaigns", `{"name":"nameless"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCampaignStatsEndpoint(t *testing.T) {
	h, db := setupTestHandler()
	r := setupTestRouter(h)

	db.Create(&models.Campaign{CampaignID: "hndStats", Status: "active", Revenue: 50, ConversionCount: 2})
	db.Create(&models.Click{ClickID: "mc_hndStats_1", CampaignID: "hndStats", DeviceType: "Mobile", Country: "Brazil"})
	db.Create(&models.PageView{ClickID: "mc_hndStats_1"})

	t.Run("Returns aggregates", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/campaigns/hndStats/stats", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		var stats services.CampaignStats
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, int64(1), stats.ClickCount)
		assert.Equal(t, int64(1), stats.ViewCount)
		assert.Equal(t, 50.0, stats.Campaign.Revenue)
		assert.Equal(t, []services.CountStat{{Label: "Brazil", Count: 1}}, stats.CountryStats)
	})

	t.Run("Unknown campaign", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/campaigns/hndStats404/stats", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRecordSpendEndpoint(t *testing.T) {
	h, db := setupTestHandler()
	r := setupTestRouter(h)

	db.Create(&models.Campaign{CampaignID: "hndSpend", Status: "active"})

	t.Run("Records spend and updates total", func(t *testing.T) {
		w := postJSON(r, "/api/campaigns/hndSpend/spend", `{"amount":120.5,"source":"meta","date":"2026-08-29T00:00:00Z"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		var campaign models.Campaign
		db.Where("campaign_id = ?", "hndSpend").First(&campaign)
		assert.Equal(t, 120.5, campaign.Spend)
	})

	t.Run("Rejects missing amount", func(t *testing.T) {
		w := postJSON(r, "/api/campaigns/hndSpend/spend", `{"source":"meta"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Rejects bad date", func(t *testing.T) {
		w := postJSON(r, "/api/campaigns/hndSpend/spend", `{"amount":5,"date":"yesterday"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown campaign", func(t *testing.T) {
		w := postJSON(r, "/api/campaigns/hndSpend404/spend", `{"amount":5}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCampaignQREndpoint(t *testing.T) {
	h, db := setupTestHandler()
	r := setupTestRouter(h)

	db.Create(&models.Campaign{CampaignID: "hndQR", Status: "active"})

	t.Run("Returns PNG", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/campaigns/hndQR/qr?size=128", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.True(t, len(w.Body.Bytes()) > 8)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes()[:4])
	})

	t.Run("Unknown campaign", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/campaigns/hndQR404/qr", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
