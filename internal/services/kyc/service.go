// Package kyc handles identity-verification submissions: intake
// validation, the concurrent auto-check pipeline and the manual-review
// flagging that feeds the reviewer workflow.
package kyc

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	errs "aegis/internal/errors"
	"aegis/internal/models"
	"aegis/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const manualReviewReason = "Low auto-check score"

type service struct {
	repo     repositories.KYCRepository
	provider DocumentSignalProvider
	config   Config
	logger   *zap.Logger
	metrics  MetricsCollector
}

// NewService creates a KYC service over the given document scorer.
func NewService(
	repo repositories.KYCRepository,
	provider DocumentSignalProvider,
	config Config,
	logger *zap.Logger,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("kyc repository is required")
	}
	if provider == nil {
		panic("document signal provider is required")
	}
	if config.PassThreshold <= 0 {
		config.PassThreshold = 70
	}
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		repo:     repo,
		provider: provider,
		config:   config,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *service) SubmitKYC(ctx context.Context, userID uint, docs Submission) (*models.KYCSubmission, error) {
	if err := validate(docs); err != nil {
		return nil, err
	}

	submission := &models.KYCSubmission{
		Reference:    uuid.NewString(),
		UserID:       userID,
		IDType:       docs.IDType,
		IDNumber:     docs.IDNumber,
		IDFrontImage: docs.IDFrontImage,
		IDBackImage:  docs.IDBackImage,
		SelfieImage:  docs.SelfieImage,
		AddressProof: docs.AddressProof,
		Status:       models.StatusPending,
		SubmittedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to persist KYC submission: %w", err)
	}

	result := s.performAutoChecks(ctx, submission)

	flagReason := ""
	if !result.Passed {
		flagReason = manualReviewReason
	}

	// The auto-check results and the manual-review flip commit together:
	// a low-scoring submission must never stay visible as pending.
	if err := s.repo.RecordAutoChecks(ctx, submission.ID, autoCheckJSON(result), result.Score, flagReason); err != nil {
		return nil, fmt.Errorf("failed to record auto-check results: %w", err)
	}

	submission.AutoCheckResults = autoCheckJSON(result)
	submission.AutoCheckScore = result.Score
	if flagReason != "" {
		submission.Status = models.StatusManualReview
		submission.ReviewReason = flagReason
		now := time.Now()
		submission.FlaggedAt = &now
	}

	s.metrics.RecordAutoCheck(result.Score, result.Passed)
	s.logger.Info("KYC documents submitted",
		zap.Uint("user_id", userID),
		zap.String("submission_ref", submission.Reference),
		zap.Int("auto_check_score", result.Score),
		zap.String("status", submission.Status))

	return submission, nil
}

// performAutoChecks fans the four sub-checks out concurrently and merges
// their scores. A failed check degrades to zero, dragging the average
// down toward manual review instead of failing the submission.
func (s *service) performAutoChecks(ctx context.Context, submission *models.KYCSubmission) AutoCheckResult {
	type subCheck struct {
		name  string
		score func(context.Context, *models.KYCSubmission) (float64, error)
	}
	checks := []subCheck{
		{"document_quality", s.provider.ScoreDocumentQuality},
		{"face_match", s.provider.ScoreFaceMatch},
		{"document_authenticity", s.provider.ScoreAuthenticity},
		{"address_match", s.provider.ScoreAddressMatch},
	}

	scores := make([]float64, len(checks))
	failed := make([]error, len(checks))

	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.config.CheckTimeout)
			defer cancel()

			score, err := check.score(cctx, submission)
			if err != nil {
				failed[i] = err
				return nil
			}
			scores[i] = score
			return nil
		})
	}
	g.Wait() //nolint:errcheck // check errors are captured per slot

	result := AutoCheckResult{
		Checks:    make(map[string]float64, len(checks)),
		Timestamp: time.Now(),
	}
	var sum float64
	for i, check := range checks {
		if err := failed[i]; err != nil {
			s.logger.Warn("KYC auto-check degraded",
				zap.String("check", check.name),
				zap.String("submission_ref", submission.Reference),
				zap.Error(err))
			result.Degraded = append(result.Degraded, check.name)
			result.Checks[check.name] = 0
			continue
		}
		result.Checks[check.name] = scores[i]
		sum += scores[i]
	}

	result.Score = int(math.Round(sum / float64(len(checks))))
	result.Passed = result.Score >= s.config.PassThreshold
	return result
}

func (s *service) GetStatus(ctx context.Context, userID uint) (*models.KYCSubmission, error) {
	return s.repo.LatestByUser(ctx, userID)
}

func (s *service) GetPendingReviews(ctx context.Context, limit int) ([]models.KYCSubmission, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListPendingReview(ctx, limit)
}

func validate(docs Submission) error {
	var missing []string
	if docs.IDType == "" {
		missing = append(missing, "id_type")
	}
	if docs.IDNumber == "" {
		missing = append(missing, "id_number")
	}
	if docs.IDFrontImage == "" {
		missing = append(missing, "id_front_image")
	}
	if docs.SelfieImage == "" {
		missing = append(missing, "selfie_image")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errs.ErrKYCValidation, strings.Join(missing, ", "))
	}
	return nil
}

func autoCheckJSON(result AutoCheckResult) models.JSON {
	checks := make(map[string]interface{}, len(result.Checks))
	for name, score := range result.Checks {
		checks[name] = score
	}
	out := models.JSON{
		"score":     result.Score,
		"checks":    checks,
		"passed":    result.Passed,
		"timestamp": result.Timestamp.Unix(),
	}
	if len(result.Degraded) > 0 {
		out["degraded"] = result.Degraded
	}
	return out
}
