package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Alert actions
const (
	AlertActionReview = "review"
	AlertActionFlag   = "flag"
)

// Alert records one triggered monitoring rule.
type Alert struct {
	Rule      string  `json:"rule"`
	Action    string  `json:"action"`
	Threshold float64 `json:"threshold"`
}

// AlertList stores the ordered alerts of a monitoring pass as jsonb.
type AlertList []Alert

// Value implements the driver.Valuer interface
func (l AlertList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Alert{})
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *AlertList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("cannot scan non-bytes into AlertList")
	}
	return json.Unmarshal(bytes, l)
}

// MonitoringRecord is written for every monitored transaction event,
// alerts or not, so the audit trail stays complete.
type MonitoringRecord struct {
	ID              uint      `gorm:"primarykey"`
	Reference       string    `gorm:"uniqueIndex;not null"`
	UserID          uint      `gorm:"index;not null"`
	TransactionData JSON      `gorm:"type:jsonb"`
	Alerts          AlertList `gorm:"type:jsonb"`
	RequiresReview  bool      `gorm:"index;default:false"`
	Status          string    `gorm:"index;not null"`
	ReviewerID      *uint
	ReviewNotes     string
	MonitoredAt     time.Time
	ReviewedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
