// Package screening orchestrates AML screening of a transaction: it
// builds the risk snapshot, runs the rule aggregator, persists the
// screening record and raises an alert when the risk is high.
package screening

import (
	"context"
	"fmt"
	"math"
	"time"

	"aegis/internal/models"
	"aegis/internal/repositories"
	"aegis/internal/services/notification"
	"aegis/internal/services/risk"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type service struct {
	repo       repositories.ScreeningRepository
	users      repositories.UserRepository
	signals    risk.SignalProvider
	aggregator *risk.Aggregator
	notifier   notification.Sink
	config     Config
	logger     *zap.Logger
	metrics    MetricsCollector
}

// NewService creates a screening service over the default AML rule set.
func NewService(
	repo repositories.ScreeningRepository,
	users repositories.UserRepository,
	signals risk.SignalProvider,
	notifier notification.Sink,
	config Config,
	logger *zap.Logger,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("screening repository is required")
	}
	if signals == nil {
		panic("signal provider is required")
	}
	if config.ReviewThreshold <= 0 {
		config.ReviewThreshold = 70
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	if notifier == nil {
		notifier = notification.NewLogSink(logger)
	}

	aggregator := risk.NewAggregator(risk.DefaultRuleSet(), risk.AggregatorConfig{
		RuleTimeout: config.RuleTimeout,
		Parallelism: config.RuleParallelism,
	}, logger)

	return &service{
		repo:       repo,
		users:      users,
		signals:    signals,
		aggregator: aggregator,
		notifier:   notifier,
		config:     config,
		logger:     logger,
		metrics:    metrics,
	}
}

func (s *service) ScreenTransaction(ctx context.Context, userID uint, tx TransactionData) (*models.AMLScreening, error) {
	rc, err := s.buildContext(ctx, userID, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to build risk context: %w", err)
	}

	result := s.aggregator.Score(ctx, rc, s.signals)
	for _, rule := range result.Degraded {
		s.metrics.RecordDegradedRule(rule)
	}

	status := models.StatusPassed
	if result.Score > s.config.ReviewThreshold {
		status = models.StatusReviewRequired
	}

	screening := &models.AMLScreening{
		Reference:       uuid.NewString(),
		UserID:          userID,
		TransactionType: tx.Type,
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		Destination:     tx.Destination,
		RiskScore:       result.Score,
		RiskLevel:       result.Level,
		Flags:           s.auditFlags(rc, tx),
		Status:          status,
		ScreenedAt:      time.Now(),
	}

	// Persistence must succeed before any alert goes out.
	if err := s.repo.Create(ctx, screening); err != nil {
		return nil, fmt.Errorf("failed to persist screening: %w", err)
	}

	s.metrics.RecordScreening(result.Level, result.Score)
	s.logger.Info("AML screening completed",
		zap.Uint("user_id", userID),
		zap.String("screening_ref", screening.Reference),
		zap.Int("risk_score", result.Score),
		zap.String("status", status))

	if status == models.StatusReviewRequired {
		// Fire and forget: a failed alert never unwinds the screening.
		if err := s.notifier.NotifyComplianceTeam(ctx, userID, screening); err != nil {
			s.logger.Error("failed to alert compliance team",
				zap.String("screening_ref", screening.Reference),
				zap.Error(err))
		}
	}

	return screening, nil
}

func (s *service) GetScreeningStatus(ctx context.Context, userID uint) (*models.AMLScreening, error) {
	return s.repo.LatestByUser(ctx, userID)
}

func (s *service) GetPendingReviews(ctx context.Context, limit int) ([]models.AMLScreening, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListPendingReview(ctx, limit)
}

// buildContext snapshots the inputs to the scoring pass. Rules read the
// snapshot; only the async rules go back to the signal provider.
func (s *service) buildContext(ctx context.Context, userID uint, tx TransactionData) (risk.Context, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return risk.Context{}, err
	}
	txCount, err := s.signals.TransactionCount24h(ctx, userID)
	if err != nil {
		return risk.Context{}, err
	}

	return risk.Context{
		UserID:          userID,
		TransactionType: tx.Type,
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		Destination:     tx.Destination,
		AccountAgeDays:  user.AccountAgeDays(time.Now()),
		TxCount24h:      txCount,
		KYCVerified:     user.KYCVerified,
	}, nil
}

// auditFlags derives the persisted flags straight from the snapshot,
// independently of what the scoring rules emitted, so the audit trail
// does not depend on rule internals.
func (s *service) auditFlags(rc risk.Context, tx TransactionData) models.StringList {
	flags := models.StringList{}
	if rc.Amount > 10000 {
		flags = append(flags, string(risk.FlagLargeTransaction))
	}
	if rc.AccountAgeDays < 7 {
		flags = append(flags, string(risk.FlagNewAccount))
	}
	if rc.TxCount24h > 10 {
		flags = append(flags, string(risk.FlagHighFrequency))
	}
	if rc.Amount > 0 && math.Mod(rc.Amount, 1000) == 0 {
		flags = append(flags, string(risk.FlagRoundAmount))
	}
	if tx.CrossBorder && rc.Amount > 5000 {
		flags = append(flags, string(risk.FlagCrossBorderHighRisk))
	}
	return flags
}
