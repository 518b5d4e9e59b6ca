package services

import (
	"github.com/mssola/user_agent"
)

// Enrichment is the device/geo metadata attached to clicks and page views.
// Everything here is best effort: an unparseable user agent or a missing
// GeoIP database must never fail the tracking call.
type Enrichment struct {
	IPAddress      string
	Country        string
	Region         string
	City           string
	DeviceType     string
	Browser        string
	OS             string
	ConnectionType string
	IsCrawler      bool
	IsProxy        bool
}

type Enricher struct {
	geoIP *GeoIPService
}

func NewEnricher(geoIP *GeoIPService) *Enricher {
	return &Enricher{geoIP: geoIP}
}

func (e *Enricher) Enrich(ipAddress, userAgent string) Enrichment {
	var enr Enrichment

	// 1. Parse User Agent
	ua := user_agent.New(userAgent)
	browserName, browserVer := ua.Browser()
	enr.Browser = browserName
	if browserVer != "" {
		enr.Browser = browserName + " " + browserVer
	}
	enr.OS = ua.OS()

	if ua.Bot() {
		enr.DeviceType = "Bot"
		enr.IsCrawler = true
	} else if ua.Mobile() {
		enr.DeviceType = "Mobile"
	} else {
		enr.DeviceType = "Desktop"
	}

	// 2. GeoIP Lookup
	loc := e.geoIP.Lookup(ipAddress)
	enr.Country = loc.Country
	enr.Region = loc.Region
	enr.City = loc.City
	enr.IsProxy = loc.Proxy

	// Connection type needs a dedicated MaxMind edition; left empty when the
	// deployment only ships the City database.
	enr.ConnectionType = ""

	// 3. Mask IP for Privacy (GDPR)
	enr.IPAddress = maskIP(ipAddress)

	return enr
}

func maskIP(ip string) string {
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == '.' {
			return ip[:i] + ".0"
		}
		if ip[i] == ':' {
			return "IPv6 (Masked)"
		}
	}
	return ip
}
