package repositories

import (
	"context"
	"errors"
	"time"

	errs "aegis/internal/errors"
	"aegis/internal/models"

	"gorm.io/gorm"
)

// KYCRepository persists identity-verification submissions. The approval
// path couples the submission status flip with the owning user's
// kyc_verified flag inside one database transaction.
type KYCRepository interface {
	Create(ctx context.Context, submission *models.KYCSubmission) error
	GetByID(ctx context.Context, id uint) (*models.KYCSubmission, error)
	LatestByUser(ctx context.Context, userID uint) (*models.KYCSubmission, error)
	ListPendingReview(ctx context.Context, limit int) ([]models.KYCSubmission, error)
	// RecordAutoChecks writes the auto-check outcome. When flagReason is
	// non-empty the manual_review flip commits in the same update so a
	// low-scoring submission can never linger as pending.
	RecordAutoChecks(ctx context.Context, id uint, results models.JSON, score int, flagReason string) error
	TransitionStatus(ctx context.Context, id uint, from, to string, fields map[string]interface{}) (bool, error)
	// ApproveWithUserFlag commits the approved status and the user's
	// kyc_verified flag as one atomic unit. It reports false when the
	// status guard did not match.
	ApproveWithUserFlag(ctx context.Context, id uint, from string, fields map[string]interface{}) (bool, error)
}

type kycRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) KYCRepository {
	return &kycRepository{db: db}
}

func (r *kycRepository) Create(ctx context.Context, submission *models.KYCSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *kycRepository) GetByID(ctx context.Context, id uint) (*models.KYCSubmission, error) {
	var submission models.KYCSubmission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrRecordNotFound
		}
		return nil, err
	}
	return &submission, nil
}

func (r *kycRepository) LatestByUser(ctx context.Context, userID uint) (*models.KYCSubmission, error) {
	var submission models.KYCSubmission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrRecordNotFound
		}
		return nil, err
	}
	return &submission, nil
}

func (r *kycRepository) ListPendingReview(ctx context.Context, limit int) ([]models.KYCSubmission, error) {
	var submissions []models.KYCSubmission
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{models.StatusPending, models.StatusManualReview}).
		Order("submitted_at ASC").
		Limit(limit).
		Find(&submissions).Error
	return submissions, err
}

func (r *kycRepository) RecordAutoChecks(ctx context.Context, id uint, results models.JSON, score int, flagReason string) error {
	updates := map[string]interface{}{
		"auto_check_results": results,
		"auto_check_score":   score,
	}
	if flagReason != "" {
		updates["status"] = models.StatusManualReview
		updates["review_reason"] = flagReason
		updates["flagged_at"] = time.Now()
	}
	return r.db.WithContext(ctx).
		Model(&models.KYCSubmission{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *kycRepository) TransitionStatus(ctx context.Context, id uint, from, to string, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.KYCSubmission{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *kycRepository) ApproveWithUserFlag(ctx context.Context, id uint, from string, fields map[string]interface{}) (bool, error) {
	committed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.KYCSubmission
		if err := tx.First(&submission, id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"status": models.StatusApproved}
		for k, v := range fields {
			updates[k] = v
		}
		res := tx.Model(&models.KYCSubmission{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Guard lost the race; nothing to roll back.
			return nil
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", submission.UserID).
			Updates(map[string]interface{}{
				"kyc_verified":    true,
				"kyc_verified_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		committed = true
		return nil
	})
	return committed, err
}
