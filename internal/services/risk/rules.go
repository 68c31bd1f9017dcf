package risk

import (
	"context"
	"time"
)

// Scoring tiers. The weights match the compliance policy: each factor
// contributes its tier's points and the aggregate is clamped to 100.
const (
	amountTierHigh   = 10000.0
	amountTierMid    = 5000.0
	amountTierLow    = 1000.0
	newAccountDays   = 7
	youngAccountDays = 30
	highFrequency    = 10
	midFrequency     = 5

	patternWindow        = 7 * 24 * time.Hour
	structuringThreshold = 1000.0
	structuringCount     = 5
	patternCap           = 15
)

// amountRule scores the transaction amount tier (0-30 points).
type amountRule struct{}

func (amountRule) Name() string { return "transaction_amount" }

func (amountRule) Evaluate(_ context.Context, rc Context, _ SignalProvider) (Contribution, error) {
	c := Contribution{Rule: "transaction_amount"}
	switch {
	case rc.Amount > amountTierHigh:
		c.Points = 30
		c.Flags = append(c.Flags, FlagLargeTransaction)
	case rc.Amount > amountTierMid:
		c.Points = 20
	case rc.Amount > amountTierLow:
		c.Points = 10
	}
	return c, nil
}

// accountAgeRule scores how new the account is (0-20 points).
type accountAgeRule struct{}

func (accountAgeRule) Name() string { return "account_age" }

func (accountAgeRule) Evaluate(_ context.Context, rc Context, _ SignalProvider) (Contribution, error) {
	c := Contribution{Rule: "account_age"}
	switch {
	case rc.AccountAgeDays < newAccountDays:
		c.Points = 20
		c.Flags = append(c.Flags, FlagNewAccount)
	case rc.AccountAgeDays < youngAccountDays:
		c.Points = 10
	}
	return c, nil
}

// frequencyRule scores 24h transaction velocity (0-20 points).
type frequencyRule struct{}

func (frequencyRule) Name() string { return "transaction_frequency" }

func (frequencyRule) Evaluate(_ context.Context, rc Context, _ SignalProvider) (Contribution, error) {
	c := Contribution{Rule: "transaction_frequency"}
	switch {
	case rc.TxCount24h > highFrequency:
		c.Points = 20
		c.Flags = append(c.Flags, FlagHighFrequency)
	case rc.TxCount24h > midFrequency:
		c.Points = 10
	}
	return c, nil
}

// geographicRule is a reserved extension point (0-15 points). It always
// contributes zero until a country-risk source is wired in.
type geographicRule struct{}

func (geographicRule) Name() string { return "geographic_risk" }

func (geographicRule) Evaluate(_ context.Context, _ Context, _ SignalProvider) (Contribution, error) {
	return Contribution{Rule: "geographic_risk"}, nil
}

// suspiciousPatternRule scores known laundering patterns (0-15 points).
// Rapid deposit-to-withdraw pairs within an hour over the last 7 days add
// 15; more than 5 sub-threshold deposits in 24h add 10. The sub-score is
// capped at 15 even when both trigger, matching the documented policy.
type suspiciousPatternRule struct{}

func (suspiciousPatternRule) Name() string { return "suspicious_patterns" }

func (suspiciousPatternRule) Evaluate(ctx context.Context, rc Context, signals SignalProvider) (Contribution, error) {
	c := Contribution{Rule: "suspicious_patterns"}

	turnover, err := signals.RapidTurnoverCount(ctx, rc.UserID, patternWindow)
	if err != nil {
		return Contribution{}, err
	}
	if turnover > 0 {
		c.Points += 15
		c.Flags = append(c.Flags, FlagRapidTurnover)
	}

	small, err := signals.SmallDepositCount24h(ctx, rc.UserID, structuringThreshold)
	if err != nil {
		return Contribution{}, err
	}
	if small > structuringCount {
		c.Points += 10
		c.Flags = append(c.Flags, FlagStructuring)
	}

	if c.Points > patternCap {
		c.Points = patternCap
	}
	return c, nil
}

// DefaultRuleSet returns the AML screening rules in their canonical order.
// Order only fixes how results are merged; execution is concurrent.
func DefaultRuleSet() []Rule {
	return []Rule{
		amountRule{},
		accountAgeRule{},
		frequencyRule{},
		geographicRule{},
		suspiciousPatternRule{},
	}
}
