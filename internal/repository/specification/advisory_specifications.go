package specification

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ByCrop matches a crop name case-insensitively.
type ByCrop struct {
	Crop string
}

func (s ByCrop) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(crop) = ?", strings.ToLower(strings.TrimSpace(s.Crop)))
}

// ByUserID filters advisory records by channel address.
type ByUserID struct {
	UserID string
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// CreatedSince keeps rows created at or after Since.
type CreatedSince struct {
	Since time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Since)
}

// ByOutcome filters advisory records by pipeline outcome.
type ByOutcome struct {
	Outcome string
}

func (s ByOutcome) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("outcome = ?", s.Outcome)
}
