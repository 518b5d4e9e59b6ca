package models

import (
	"time"
)

// OrganicCampaignID is the reserved campaign identifier for untagged traffic.
// Issuing a click against it auto-creates the campaign on first use.
const OrganicCampaignID = "organic"

type Campaign struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CampaignID string `gorm:"unique;not null;size:64;index" json:"campaign_id"` // external id used in tag URLs
	Name       string `gorm:"size:255" json:"name"`
	Status     string `gorm:"size:20;default:'active'" json:"status"`

	// Denormalized running totals read by reporting. Spend is written by the
	// ads-spend sync; revenue and conversion count only move through
	// reconciliation, via atomic increments.
	Spend           float64 `gorm:"default:0" json:"spend"`
	Revenue         float64 `gorm:"default:0" json:"revenue"`
	ConversionCount int64   `gorm:"default:0" json:"conversion_count"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Clicks []Click `gorm:"foreignKey:CampaignID;references:CampaignID" json:"clicks,omitempty"`
}
