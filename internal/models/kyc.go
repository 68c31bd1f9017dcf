package models

import "time"

// KYCSubmission holds one identity-verification attempt. Document fields
// and auto-check results are immutable after the auto-check pass; the
// review section is guarded by status.
type KYCSubmission struct {
	ID               uint   `gorm:"primarykey"`
	Reference        string `gorm:"uniqueIndex;not null"`
	UserID           uint   `gorm:"index;not null"`
	IDType           string `gorm:"not null"`
	IDNumber         string `gorm:"not null"`
	IDFrontImage     string `gorm:"not null"`
	IDBackImage      string
	SelfieImage      string `gorm:"not null"`
	AddressProof     string
	AutoCheckResults JSON   `gorm:"type:jsonb"`
	AutoCheckScore   int    `gorm:"default:0"`
	Status           string `gorm:"index;not null;default:'pending'"`
	ReviewReason     string
	ReviewerID       *uint
	ReviewNotes      string
	SubmittedAt      time.Time
	FlaggedAt        *time.Time
	ReviewedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
