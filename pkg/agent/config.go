package agent

import (
	"net/url"
	"strconv"
)

// Config is the tag configuration carried on the script URL's query string,
// e.g. https://cdn.example.com/mc.js?attribution=lastpaid&cookieduration=90.
type Config struct {
	Attribution        Model
	CookieDomain       string
	CookieDurationDays int    // default 90
	DefaultCampaignID  string // hazard: setting this classifies every visit as paid
	RegisterViewOnce   bool
	TrackAllVisits     bool
	UniversalTracking  bool // default true
}

// DefaultConfig returns the configuration an untagged script runs with.
func DefaultConfig() Config {
	return Config{
		Attribution:        LastPaid,
		CookieDurationDays: 90,
		UniversalTracking:  true,
	}
}

// ParseScriptConfig reads tag parameters off the script URL. Unknown or
// malformed values fall back to their defaults rather than failing the tag.
func ParseScriptConfig(scriptURL string) (Config, error) {
	cfg := DefaultConfig()

	u, err := url.Parse(scriptURL)
	if err != nil {
		return cfg, err
	}
	q := u.Query()

	if v := q.Get("attribution"); v != "" {
		cfg.Attribution = ParseModel(v)
	}
	cfg.CookieDomain = q.Get("cookiedomain")
	if v := q.Get("cookieduration"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.CookieDurationDays = days
		}
	}
	cfg.DefaultCampaignID = q.Get("defaultcampaignid")
	cfg.RegisterViewOnce = boolParam(q, "regviewonce", false)
	cfg.TrackAllVisits = boolParam(q, "trackallvisits", false)
	cfg.UniversalTracking = boolParam(q, "universaltracking", true)

	return cfg, nil
}

func boolParam(q url.Values, name string, def bool) bool {
	v := q.Get(name)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}
