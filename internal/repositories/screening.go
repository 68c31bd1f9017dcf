package repositories

import (
	"context"
	"errors"

	errs "aegis/internal/errors"
	"aegis/internal/models"

	"gorm.io/gorm"
)

// ScreeningRepository persists AML screening records. Creation writes the
// immutable decision inputs; TransitionStatus is the only mutation and is
// guarded by the current status for optimistic concurrency.
type ScreeningRepository interface {
	Create(ctx context.Context, screening *models.AMLScreening) error
	GetByID(ctx context.Context, id uint) (*models.AMLScreening, error)
	LatestByUser(ctx context.Context, userID uint) (*models.AMLScreening, error)
	ListPendingReview(ctx context.Context, limit int) ([]models.AMLScreening, error)
	// TransitionStatus applies fields and moves status from->to in one
	// guarded update. It reports false when the guard did not match.
	TransitionStatus(ctx context.Context, id uint, from, to string, fields map[string]interface{}) (bool, error)
}

type screeningRepository struct {
	db *gorm.DB
}

func NewScreeningRepository(db *gorm.DB) ScreeningRepository {
	return &screeningRepository{db: db}
}

func (r *screeningRepository) Create(ctx context.Context, screening *models.AMLScreening) error {
	return r.db.WithContext(ctx).Create(screening).Error
}

func (r *screeningRepository) GetByID(ctx context.Context, id uint) (*models.AMLScreening, error) {
	var screening models.AMLScreening
	if err := r.db.WithContext(ctx).First(&screening, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrRecordNotFound
		}
		return nil, err
	}
	return &screening, nil
}

func (r *screeningRepository) LatestByUser(ctx context.Context, userID uint) (*models.AMLScreening, error) {
	var screening models.AMLScreening
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("screened_at DESC").
		First(&screening).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrRecordNotFound
		}
		return nil, err
	}
	return &screening, nil
}

func (r *screeningRepository) ListPendingReview(ctx context.Context, limit int) ([]models.AMLScreening, error) {
	var screenings []models.AMLScreening
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusReviewRequired).
		Order("screened_at DESC").
		Limit(limit).
		Find(&screenings).Error
	return screenings, err
}

func (r *screeningRepository) TransitionStatus(ctx context.Context, id uint, from, to string, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.AMLScreening{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
