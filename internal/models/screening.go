package models

import "time"

// AMLScreening is the persisted result of screening one transaction.
// The decision inputs (score, level, flags) are written once at creation;
// only the review fields change afterwards, guarded by status.
type AMLScreening struct {
	ID              uint       `gorm:"primarykey"`
	Reference       string     `gorm:"uniqueIndex;not null"` // external id
	UserID          uint       `gorm:"index;not null"`
	TransactionType string     `gorm:"not null"`
	Amount          float64    `gorm:"not null"`
	Currency        string     `gorm:"default:'GBP'"`
	Destination     string
	RiskScore       int        `gorm:"not null"`
	RiskLevel       string     `gorm:"not null"`
	Flags           StringList `gorm:"type:jsonb"`
	Status          string     `gorm:"index;not null"`
	ReviewerID      *uint
	ReviewNotes     string
	ScreenedAt      time.Time
	ReviewedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
