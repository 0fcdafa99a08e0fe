package models

import (
	"time"
)

// PriceSheet represents the per-brand vehicle price sheet. Brand keys are
// unique under case-insensitive comparison; the stored key is lower-cased.
type PriceSheet struct {
	Brand     string    `gorm:"primaryKey" json:"brand"`
	Content   string    `gorm:"not null" json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for gorm.
func (PriceSheet) TableName() string {
	return "vehicle_prices"
}
