package repositories

import (
	"context"
	"time"

	"aegis/internal/models"
	"aegis/internal/repositories/cache"

	"gorm.io/gorm"
)

// SignalRepository implements risk.SignalProvider over the transaction
// history tables, with a short-TTL cache in front of the velocity
// counters that get hit on every screening and monitoring pass.
type SignalRepository struct {
	db       *gorm.DB
	cache    *cache.CacheService
	cacheTTL time.Duration
}

func NewSignalRepository(db *gorm.DB, cacheService *cache.CacheService, cacheTTL time.Duration) *SignalRepository {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &SignalRepository{db: db, cache: cacheService, cacheTTL: cacheTTL}
}

// AccountAge returns the account's age in whole days.
func (r *SignalRepository) AccountAge(ctx context.Context, userID uint) (int, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return 0, err
	}
	return user.AccountAgeDays(time.Now()), nil
}

// TransactionCount24h counts deposits, withdrawals and orders combined
// over the last 24 hours.
func (r *SignalRepository) TransactionCount24h(ctx context.Context, userID uint) (int, error) {
	key := r.cacheKey("txcount24h", userID)
	if count, ok := r.cached(ctx, key); ok {
		return count, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND created_at >= ?", userID, time.Now().Add(-24*time.Hour)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	r.store(ctx, key, int(count))
	return int(count), nil
}

// DailyDepositTotal sums completed deposits over the last 24 hours.
func (r *SignalRepository) DailyDepositTotal(ctx context.Context, userID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ? AND status = ? AND created_at >= ?",
			userID, models.TransactionTypeDeposit, "completed", time.Now().Add(-24*time.Hour)).
		Scan(&total).Error
	return total, err
}

// RapidTurnoverCount counts deposits within the window that were followed
// by a withdrawal from the same user in under an hour.
func (r *SignalRepository) RapidTurnoverCount(ctx context.Context, userID uint, window time.Duration) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM transactions d
		JOIN transactions w
			ON w.user_id = d.user_id
			AND w.type = ?
			AND w.created_at > d.created_at
			AND w.created_at - d.created_at < INTERVAL '1 hour'
		WHERE d.user_id = ?
			AND d.type = ?
			AND d.created_at >= ?`,
		models.TransactionTypeWithdrawal, userID,
		models.TransactionTypeDeposit, time.Now().Add(-window)).
		Scan(&count).Error
	return int(count), err
}

// SmallDepositCount24h counts sub-threshold deposits over the last 24
// hours, the structuring signal.
func (r *SignalRepository) SmallDepositCount24h(ctx context.Context, userID uint, threshold float64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND amount < ? AND created_at >= ?",
			userID, models.TransactionTypeDeposit, threshold, time.Now().Add(-24*time.Hour)).
		Count(&count).Error
	return int(count), err
}

func (r *SignalRepository) cacheKey(signal string, userID uint) string {
	if r.cache == nil {
		return ""
	}
	return r.cache.GenerateKey("signals", signal, userID)
}

func (r *SignalRepository) cached(ctx context.Context, key string) (int, bool) {
	if r.cache == nil || key == "" {
		return 0, false
	}
	var count int
	found, err := r.cache.Get(ctx, key, &count)
	if err != nil || !found {
		return 0, false
	}
	return count, true
}

func (r *SignalRepository) store(ctx context.Context, key string, count int) {
	if r.cache == nil || key == "" {
		return
	}
	// Cache failures only cost a future database round trip.
	_ = r.cache.SetWithTTL(ctx, key, count, r.cacheTTL)
}
