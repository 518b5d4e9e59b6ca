package models

import (
	"time"
)

// AdSpend is a cost row written by the external ads-spend sync job through
// the spend ingestion API. The campaign's Spend total is incremented in the
// same operation.
type AdSpend struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EntryID    string    `gorm:"unique;size:36" json:"entry_id"`
	CampaignID string    `gorm:"not null;size:64;index" json:"campaign_id"`
	Source     string    `gorm:"size:50;default:'facebook'" json:"source"`
	Amount     float64   `gorm:"not null" json:"amount"`
	Date       time.Time `gorm:"index" json:"date"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
