package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/automatikblog/metrica-click-sub000/internal/models"

	"github.com/stretchr/testify/assert"
)

func postJSON(r http.Handler, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestConversionWebhook(t *testing.T) {
	h, db := setupTestHandler()
	r := setupTestRouter(h)

	db.Create(&models.Campaign{CampaignID: "whA", Status: "active"})
	db.Create(&models.Click{ClickID: "mc_whA_1712345678901", CampaignID: "whA"})

	t.Run("Hotmart purchase", func(t *testing.T) {
		w := postJSON(r, "/conversion", `{"SCK":"mc_whA_1712345678901","purchase_value":297.0,"currency":"BRL","event":"PURCHASE_COMPLETED"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, false, resp["duplicate"])
		assert.Equal(t, "mc_whA_1712345678901", resp["clickId"])
		assert.Equal(t, "whA", resp["campaignId"])
		assert.NotEmpty(t, resp["webhookId"])
		assert.NotNil(t, resp["processingTimeMs"])

		var campaign models.Campaign
		db.Where("campaign_id = ?", "whA").First(&campaign)
		assert.Equal(t, 297.0, campaign.Revenue)
		assert.Equal(t, int64(1), campaign.ConversionCount)
	})

	t.Run("Second webhook is duplicate with same conversion id", func(t *testing.T) {
		first := postJSON(r, "/conversion", `{"sck":"mc_whA_1712345678901","purchase_value":297.0}`)
		assert.Equal(t, http.StatusOK, first.Code)

		var firstResp map[string]interface{}
		json.Unmarshal(first.Body.Bytes(), &firstResp)
		assert.Equal(t, true, firstResp["duplicate"])

		second := postJSON(r, "/conversion", `{"sck":"mc_whA_1712345678901","purchase_value":297.0}`)
		var secondResp map[string]interface{}
		json.Unmarshal(second.Body.Bytes(), &secondResp)
		assert.Equal(t, firstResp["conversionId"], secondResp["conversionId"])

		// Count moved exactly once in total
		var campaign models.Campaign
		db.Where("campaign_id = ?", "whA").First(&campaign)
		assert.Equal(t, int64(1), campaign.ConversionCount)
	})

	t.Run("Missing identity", func(t *testing.T) {
		w := postJSON(r, "/conversion", `{"event":"PURCHASE_COMPLETED","purchase_value":10}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])
		assert.NotEmpty(t, resp["error"])
		assert.NotEmpty(t, resp["timestamp"])
	})

	t.Run("Unparseable body", func(t *testing.T) {
		w := postJSON(r, "/conversion", `<xml/>`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unmatched identity yields direct conversion", func(t *testing.T) {
		w := postJSON(r, "/conversion", `{"sck":"tx-ext-55","amount":12.5}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		assert.Nil(t, resp["clickId"])
		assert.Nil(t, resp["campaignId"])
	})
}

func TestCreateConversion(t *testing.T) {
	h, db := setupTestHandler()
	r := setupTestRouter(h)

	db.Create(&models.Campaign{CampaignID: "apiA", Status: "active"})
	db.Create(&models.Click{ClickID: "mc_apiA_7", CampaignID: "apiA"})

	t.Run("Missing clickId", func(t *testing.T) {
		w := postJSON(r, "/api/conversions", `{"value":10}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown clickId", func(t *testing.T) {
		w := postJSON(r, "/api/conversions", `{"clickId":"mc_apiA_404","value":10}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Creates conversion", func(t *testing.T) {
		w := postJSON(r, "/api/conversions", `{"clickId":"mc_apiA_7","conversionType":"lead","value":35.0,"currency":"USD"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var conv models.Conversion
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
		assert.Equal(t, "lead", conv.Type)
		assert.Equal(t, 35.0, conv.Value)
		assert.Equal(t, "USD", conv.Currency)
		assert.Equal(t, "mc_apiA_7", *conv.ClickID)

		var campaign models.Campaign
		db.Where("campaign_id = ?", "apiA").First(&campaign)
		assert.Equal(t, int64(1), campaign.ConversionCount)
		assert.Equal(t, 35.0, campaign.Revenue)
	})
}
