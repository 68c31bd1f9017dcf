package monitoring

import (
	"context"

	"aegis/internal/models"
	"aegis/internal/services/risk"
)

// Monitoring thresholds. Distinct from the AML scoring tiers: these
// gate alerts, not score points.
const (
	largeSingleThreshold  = 10000.0
	dailyDepositThreshold = 15000.0
	velocityThreshold     = 10
	crossBorderThreshold  = 5000.0
)

// DefaultRules returns the built-in monitoring rule set. Rules that need
// account history close over the signal provider.
func DefaultRules(signals risk.SignalProvider) []Rule {
	return []Rule{
		{
			Name:      "Large Single Transaction",
			Threshold: largeSingleThreshold,
			Action:    models.AlertActionReview,
			Check: func(_ context.Context, tx TransactionEvent, _ uint) (bool, error) {
				return tx.Amount > largeSingleThreshold, nil
			},
		},
		{
			Name:      "Cumulative Daily Deposits",
			Threshold: dailyDepositThreshold,
			Action:    models.AlertActionReview,
			Check: func(ctx context.Context, _ TransactionEvent, userID uint) (bool, error) {
				total, err := signals.DailyDepositTotal(ctx, userID)
				if err != nil {
					return false, err
				}
				return total > dailyDepositThreshold, nil
			},
		},
		{
			Name:      "Rapid Transaction Velocity",
			Threshold: velocityThreshold,
			Action:    models.AlertActionFlag,
			Check: func(ctx context.Context, _ TransactionEvent, userID uint) (bool, error) {
				count, err := signals.TransactionCount24h(ctx, userID)
				if err != nil {
					return false, err
				}
				return count > velocityThreshold, nil
			},
		},
		{
			Name:      "Cross-Border High Risk",
			Threshold: crossBorderThreshold,
			Action:    models.AlertActionReview,
			Check: func(_ context.Context, tx TransactionEvent, _ uint) (bool, error) {
				return tx.CrossBorder && tx.Amount > crossBorderThreshold, nil
			},
		},
	}
}
