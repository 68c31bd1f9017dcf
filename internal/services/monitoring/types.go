package monitoring

import (
	"context"
	"time"

	"aegis/internal/models"
	"aegis/internal/repositories"
)

// TransactionEvent is an arbitrary transaction event pushed through
// real-time monitoring: deposits, withdrawals and brokerage orders.
type TransactionEvent struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Destination string  `json:"destination"`
	CrossBorder bool    `json:"cross_border"`
}

// CheckFunc evaluates one rule against an event. Checks that need
// history query the signal provider through their closure; pure checks
// just inspect the event.
type CheckFunc func(ctx context.Context, tx TransactionEvent, userID uint) (bool, error)

// Rule is one monitoring rule. Every rule runs on every event,
// independently of the others.
type Rule struct {
	Name      string
	Threshold float64
	Action    string
	Check     CheckFunc
}

// Result is the outcome of one monitoring pass.
type Result struct {
	Passed         bool                     `json:"passed"`
	Alerts         []models.Alert           `json:"alerts"`
	RequiresReview bool                     `json:"requires_review"`
	Record         *models.MonitoringRecord `json:"record"`
}

// Config tunes rule execution.
type Config struct {
	RuleTimeout     time.Duration
	RuleParallelism int
}

// Service monitors transaction events and exposes the monitoring audit trail.
type Service interface {
	MonitorTransaction(ctx context.Context, userID uint, tx TransactionEvent) (*Result, error)
	GetPendingReviews(ctx context.Context, limit int) ([]models.MonitoringRecord, error)
	GenerateComplianceReport(ctx context.Context, start, end time.Time) ([]repositories.ComplianceReportRow, error)
}

// MetricsCollector defines the monitoring metrics hooks.
type MetricsCollector interface {
	RecordMonitoring(alertCount int, requiresReview bool)
	RecordDegradedRule(rule string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordMonitoring(int, bool) {}
func (NoopMetricsCollector) RecordDegradedRule(string)  {}
