// Package review drives the human-review workflow over screening,
// monitoring and KYC records. Submissions are single-writer per record:
// the status guard on the update decides which concurrent reviewer wins.
package review

import (
	"context"
	"fmt"
	"time"

	errs "aegis/internal/errors"
	"aegis/internal/repositories"

	"go.uber.org/zap"
)

// Service applies reviewer decisions to flagged records.
type Service interface {
	SubmitReview(ctx context.Context, kind RecordKind, recordID uint, decision Decision, reviewerID uint, notes string) error
}

type service struct {
	screenings repositories.ScreeningRepository
	monitoring repositories.MonitoringRepository
	kyc        repositories.KYCRepository
	logger     *zap.Logger
}

// NewService creates a review service over the three audit repositories.
func NewService(
	screenings repositories.ScreeningRepository,
	monitoring repositories.MonitoringRepository,
	kyc repositories.KYCRepository,
	logger *zap.Logger,
) Service {
	if screenings == nil || monitoring == nil || kyc == nil {
		panic("all review repositories are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		screenings: screenings,
		monitoring: monitoring,
		kyc:        kyc,
		logger:     logger,
	}
}

// SubmitReview commits a reviewer decision. Either the whole decision
// applies or nothing does: a lost optimistic-concurrency race surfaces
// as ErrStaleState with the record untouched.
func (s *service) SubmitReview(ctx context.Context, kind RecordKind, recordID uint, decision Decision, reviewerID uint, notes string) error {
	if decision != DecisionApprove && decision != DecisionReject {
		return fmt.Errorf("%w: unknown decision %q", errs.ErrInvalidStateTransition, decision)
	}

	current, err := s.currentStatus(ctx, kind, recordID)
	if err != nil {
		return err
	}

	target := decision.Status()
	if !CanTransition(current, target) {
		return fmt.Errorf("%w: %s -> %s", errs.ErrInvalidStateTransition, current, target)
	}

	fields := reviewFields(reviewerID, notes)

	var committed bool
	switch {
	case kind == KindKYC && decision == DecisionApprove:
		// Approval flips the user's kyc_verified flag in the same
		// transaction as the status change.
		committed, err = s.kyc.ApproveWithUserFlag(ctx, recordID, current, fields)
	case kind == KindKYC:
		committed, err = s.kyc.TransitionStatus(ctx, recordID, current, target, fields)
	case kind == KindMonitoring:
		committed, err = s.monitoring.TransitionStatus(ctx, recordID, current, target, fields)
	case kind == KindScreening:
		committed, err = s.screenings.TransitionStatus(ctx, recordID, current, target, fields)
	default:
		return fmt.Errorf("%w: unknown record kind %q", errs.ErrRecordNotFound, kind)
	}
	if err != nil {
		return fmt.Errorf("failed to apply review decision: %w", err)
	}
	if !committed {
		// The guard did not match: a concurrent reviewer won the race
		// between our status read and the guarded write.
		return errs.ErrStaleState
	}

	s.logger.Info("review decision committed",
		zap.String("kind", string(kind)),
		zap.Uint("record_id", recordID),
		zap.String("decision", string(decision)),
		zap.Uint("reviewer_id", reviewerID))
	return nil
}

func (s *service) currentStatus(ctx context.Context, kind RecordKind, recordID uint) (string, error) {
	switch kind {
	case KindScreening:
		record, err := s.screenings.GetByID(ctx, recordID)
		if err != nil {
			return "", err
		}
		return record.Status, nil
	case KindMonitoring:
		record, err := s.monitoring.GetByID(ctx, recordID)
		if err != nil {
			return "", err
		}
		return record.Status, nil
	case KindKYC:
		record, err := s.kyc.GetByID(ctx, recordID)
		if err != nil {
			return "", err
		}
		return record.Status, nil
	default:
		return "", fmt.Errorf("%w: unknown record kind %q", errs.ErrRecordNotFound, kind)
	}
}

func reviewFields(reviewerID uint, notes string) map[string]interface{} {
	return map[string]interface{}{
		"reviewer_id":  reviewerID,
		"review_notes": notes,
		"reviewed_at":  time.Now(),
	}
}
