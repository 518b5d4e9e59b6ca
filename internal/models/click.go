package models

import (
	"time"
)

type Click struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ClickID    string `gorm:"unique;not null;size:128;index" json:"click_id"` // mc_<campaign>_<token>
	CampaignID string `gorm:"not null;size:64;index" json:"campaign_id"`
	Source     string `gorm:"size:100;default:'direct'" json:"source"`
	Referrer   string `gorm:"size:512" json:"referrer"`

	// Ad platform browser identifiers (Meta pixel cookies)
	FBP string `gorm:"size:100" json:"fbp,omitempty"`
	FBC string `gorm:"size:255" json:"fbc,omitempty"`

	// Enrichment (best effort)
	IPAddress      string `gorm:"size:45" json:"ip_address,omitempty"`
	Country        string `gorm:"size:100;default:'Unknown'" json:"country"`
	Region         string `gorm:"size:100" json:"region"`
	City           string `gorm:"size:100" json:"city"`
	DeviceType     string `gorm:"size:50" json:"device_type"`
	Browser        string `gorm:"size:100" json:"browser"`
	OS             string `gorm:"size:100" json:"os"`
	ConnectionType string `gorm:"size:50" json:"connection_type"`
	IsCrawler      bool   `gorm:"default:false" json:"is_crawler"`
	IsProxy        bool   `gorm:"default:false" json:"is_proxy"`

	// Conversion stamp, written at most once by reconciliation.
	ConversionValue *float64   `json:"conversion_value,omitempty"`
	ConvertedAt     *time.Time `json:"converted_at,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`

	PageViews []PageView `gorm:"foreignKey:ClickID;references:ClickID" json:"page_views,omitempty"`
}
