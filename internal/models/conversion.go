package models

import (
	"time"
)

// Conversion types produced by payload normalization.
const (
	ConversionTypePurchase = "purchase"
	ConversionTypeLead     = "lead"
	ConversionTypeSignup   = "signup"
)

// Conversion links a checkout/payment notification back to the click that
// caused it. ClickID is nullable: a webhook that carries no recoverable
// identity still yields a row, recorded as direct/unattributed.
type Conversion struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	ClickID    *string `gorm:"size:128;index" json:"click_id"`
	CampaignID *string `gorm:"size:64;index" json:"campaign_id"`
	Type       string  `gorm:"size:30;not null;default:'purchase'" json:"conversion_type"`
	Value      float64 `gorm:"default:0" json:"value"`
	Currency   string  `gorm:"size:8" json:"currency"`
	WebhookID  string  `gorm:"size:36" json:"webhook_id"` // request id of the call that created the row
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
}
