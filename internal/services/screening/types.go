package screening

import (
	"context"
	"time"

	"aegis/internal/models"
)

// TransactionData is the payload screened for AML risk.
type TransactionData struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Destination string  `json:"destination"`
	CrossBorder bool    `json:"cross_border"`
}

// Config holds screening thresholds and rule-execution tuning.
type Config struct {
	// ReviewThreshold is exclusive: a score must exceed it to require
	// review. A score exactly at the threshold passes.
	ReviewThreshold int
	RuleTimeout     time.Duration
	RuleParallelism int
}

// Service screens transactions and exposes the screening audit trail.
type Service interface {
	ScreenTransaction(ctx context.Context, userID uint, tx TransactionData) (*models.AMLScreening, error)
	GetScreeningStatus(ctx context.Context, userID uint) (*models.AMLScreening, error)
	GetPendingReviews(ctx context.Context, limit int) ([]models.AMLScreening, error)
}

// MetricsCollector defines the screening metrics hooks.
type MetricsCollector interface {
	RecordScreening(riskLevel string, score int)
	RecordDegradedRule(rule string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordScreening(string, int) {}
func (NoopMetricsCollector) RecordDegradedRule(string)   {}
