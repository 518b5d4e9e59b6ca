package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScriptConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := ParseScriptConfig("https://cdn.example.com/mc.js")
		assert.NoError(t, err)
		assert.Equal(t, LastPaid, cfg.Attribution)
		assert.Equal(t, 90, cfg.CookieDurationDays)
		assert.True(t, cfg.UniversalTracking)
		assert.False(t, cfg.TrackAllVisits)
		assert.False(t, cfg.RegisterViewOnce)
		assert.Empty(t, cfg.DefaultCampaignID)
	})

	t.Run("All parameters", func(t *testing.T) {
		cfg, err := ParseScriptConfig("https://cdn.example.com/mc.js?attribution=firstclick&cookiedomain=.example.com&cookieduration=30&defaultcampaignid=brand&regviewonce=true&trackallvisits=true&universaltracking=false")
		assert.NoError(t, err)
		assert.Equal(t, FirstClick, cfg.Attribution)
		assert.Equal(t, ".example.com", cfg.CookieDomain)
		assert.Equal(t, 30, cfg.CookieDurationDays)
		assert.Equal(t, "brand", cfg.DefaultCampaignID)
		assert.True(t, cfg.RegisterViewOnce)
		assert.True(t, cfg.TrackAllVisits)
		assert.False(t, cfg.UniversalTracking)
	})

	t.Run("Malformed values keep defaults", func(t *testing.T) {
		cfg, err := ParseScriptConfig("https://cdn.example.com/mc.js?attribution=mystery&cookieduration=soon&universaltracking=maybe")
		assert.NoError(t, err)
		assert.Equal(t, LastPaid, cfg.Attribution)
		assert.Equal(t, 90, cfg.CookieDurationDays)
		assert.True(t, cfg.UniversalTracking)
	})

	t.Run("Negative cookie duration ignored", func(t *testing.T) {
		cfg, err := ParseScriptConfig("https://cdn.example.com/mc.js?cookieduration=-5")
		assert.NoError(t, err)
		assert.Equal(t, 90, cfg.CookieDurationDays)
	})
}
