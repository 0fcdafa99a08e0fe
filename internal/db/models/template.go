// Package models contains database model definitions.
package models

import (
	"time"
)

// DefaultTemplateKey is the key of the template used when no key is given.
const DefaultTemplateKey = "main"

// Template represents a named outreach letter template. Content may contain
// {{PLACEHOLDER}} tokens rendered against a dealer record.
type Template struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Content   string    `gorm:"not null" json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for gorm.
func (Template) TableName() string {
	return "templates"
}
