package models

import (
	"time"
)

// Dealer represents a dealership record. Name is unique under
// case-insensitive comparison; the id is an opaque server-generated token.
type Dealer struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Address      string    `gorm:"default:''" json:"address"`
	Number       string    `gorm:"default:''" json:"number"`
	Brand        string    `gorm:"default:''" json:"brand"`
	ShowroomLink string    `gorm:"default:''" json:"showroom_link"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName sets the table name for gorm.
func (Dealer) TableName() string {
	return "dealers"
}
