package models

import (
	"time"
)

// PageView is append-only. One click may own zero or many page views;
// duplicate registrations create duplicate rows by design (view counts,
// not unique visits).
type PageView struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClickID  string `gorm:"not null;size:128;index" json:"click_id"`
	Referrer string `gorm:"size:512" json:"referrer"`

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

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
}
