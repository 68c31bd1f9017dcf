// Package monitoring runs real-time compliance monitoring over
// transaction events. Every event is evaluated against the full rule
// set and recorded, alerts or not, so the audit trail stays complete.
package monitoring

import (
	"context"
	"fmt"
	"time"

	"aegis/internal/models"
	"aegis/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type service struct {
	repo    repositories.MonitoringRepository
	rules   []Rule
	config  Config
	logger  *zap.Logger
	metrics MetricsCollector
}

// NewService creates a monitoring service over the given rule set.
func NewService(
	repo repositories.MonitoringRepository,
	rules []Rule,
	config Config,
	logger *zap.Logger,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("monitoring repository is required")
	}
	if len(rules) == 0 {
		panic("at least one monitoring rule is required")
	}
	if config.RuleTimeout <= 0 {
		config.RuleTimeout = 2 * time.Second
	}
	if config.RuleParallelism <= 0 {
		config.RuleParallelism = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		repo:    repo,
		rules:   rules,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *service) MonitorTransaction(ctx context.Context, userID uint, tx TransactionEvent) (*Result, error) {
	triggered := make([]bool, len(s.rules))
	failed := make([]error, len(s.rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.RuleParallelism)
	for i, rule := range s.rules {
		i, rule := i, rule
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(gctx, s.config.RuleTimeout)
			defer cancel()

			hit, err := rule.Check(rctx, tx, userID)
			if err != nil {
				// A failing rule contributes no alert, not a hard error.
				failed[i] = err
				return nil
			}
			triggered[i] = hit
			return nil
		})
	}
	g.Wait() //nolint:errcheck // rule errors are captured per slot

	alerts := models.AlertList{}
	for i, rule := range s.rules {
		if err := failed[i]; err != nil {
			s.logger.Error("monitoring rule check failed",
				zap.String("rule", rule.Name),
				zap.Uint("user_id", userID),
				zap.Error(err))
			s.metrics.RecordDegradedRule(rule.Name)
			continue
		}
		if !triggered[i] {
			continue
		}
		alerts = append(alerts, models.Alert{
			Rule:      rule.Name,
			Action:    rule.Action,
			Threshold: rule.Threshold,
		})
		s.logger.Warn("transaction monitoring alert",
			zap.Uint("user_id", userID),
			zap.String("rule", rule.Name),
			zap.Float64("amount", tx.Amount))
	}

	requiresReview := false
	for _, a := range alerts {
		if a.Action == models.AlertActionReview {
			requiresReview = true
			break
		}
	}

	status := models.StatusPassed
	if requiresReview {
		status = models.StatusReviewRequired
	}

	record := &models.MonitoringRecord{
		Reference: uuid.NewString(),
		UserID:    userID,
		TransactionData: models.JSON{
			"type":         tx.Type,
			"amount":       tx.Amount,
			"currency":     tx.Currency,
			"destination":  tx.Destination,
			"cross_border": tx.CrossBorder,
		},
		Alerts:         alerts,
		RequiresReview: requiresReview,
		Status:         status,
		MonitoredAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist monitoring record: %w", err)
	}

	s.metrics.RecordMonitoring(len(alerts), requiresReview)

	return &Result{
		Passed:         len(alerts) == 0,
		Alerts:         alerts,
		RequiresReview: requiresReview,
		Record:         record,
	}, nil
}

func (s *service) GetPendingReviews(ctx context.Context, limit int) ([]models.MonitoringRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListPendingReview(ctx, limit)
}

func (s *service) GenerateComplianceReport(ctx context.Context, start, end time.Time) ([]repositories.ComplianceReportRow, error) {
	return s.repo.ComplianceReport(ctx, start, end)
}
