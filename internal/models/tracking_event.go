package models

import (
	"time"
)

type TrackingEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Action    string    `gorm:"size:50;not null" json:"action"` // e.g. "ISSUE_CLICK", "CONVERSION", "SPEND_IMPORT"
	EntityID  string    `gorm:"size:128" json:"entity_id"`      // click id, campaign id or webhook id
	Details   string    `gorm:"type:text" json:"details"`       // JSON description
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	Timestamp time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"timestamp"`
}
