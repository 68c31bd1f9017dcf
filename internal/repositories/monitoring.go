package repositories

import (
	"context"
	"errors"
	"time"

	errs "aegis/internal/errors"
	"aegis/internal/models"

	"gorm.io/gorm"
)

// ComplianceReportRow is one day of aggregated monitoring activity.
type ComplianceReportRow struct {
	Date           time.Time `json:"date"`
	TotalMonitored int       `json:"total_monitored"`
	FlaggedCount   int       `json:"flagged_count"`
	UniqueUsers    int       `json:"unique_users"`
}

// MonitoringRepository persists transaction monitoring records.
type MonitoringRepository interface {
	Create(ctx context.Context, record *models.MonitoringRecord) error
	GetByID(ctx context.Context, id uint) (*models.MonitoringRecord, error)
	ListPendingReview(ctx context.Context, limit int) ([]models.MonitoringRecord, error)
	TransitionStatus(ctx context.Context, id uint, from, to string, fields map[string]interface{}) (bool, error)
	ComplianceReport(ctx context.Context, start, end time.Time) ([]ComplianceReportRow, error)
}

type monitoringRepository struct {
	db *gorm.DB
}

func NewMonitoringRepository(db *gorm.DB) MonitoringRepository {
	return &monitoringRepository{db: db}
}

func (r *monitoringRepository) Create(ctx context.Context, record *models.MonitoringRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *monitoringRepository) GetByID(ctx context.Context, id uint) (*models.MonitoringRecord, error) {
	var record models.MonitoringRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *monitoringRepository) ListPendingReview(ctx context.Context, limit int) ([]models.MonitoringRecord, error) {
	var records []models.MonitoringRecord
	err := r.db.WithContext(ctx).
		Where("requires_review = ? AND reviewed_at IS NULL", true).
		Order("monitored_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *monitoringRepository) TransitionStatus(ctx context.Context, id uint, from, to string, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.MonitoringRecord{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *monitoringRepository) ComplianceReport(ctx context.Context, start, end time.Time) ([]ComplianceReportRow, error) {
	var rows []ComplianceReportRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			DATE(monitored_at) AS date,
			COUNT(*) AS total_monitored,
			COUNT(CASE WHEN requires_review THEN 1 END) AS flagged_count,
			COUNT(DISTINCT user_id) AS unique_users
		FROM monitoring_records
		WHERE monitored_at BETWEEN ? AND ?
		GROUP BY DATE(monitored_at)
		ORDER BY date DESC`, start, end).
		Scan(&rows).Error
	return rows, err
}
