package risk

import (
	"context"
	"time"
)

// Flag marks a specific condition observed while scoring a transaction.
type Flag string

const (
	FlagLargeTransaction    Flag = "LARGE_TRANSACTION"
	FlagNewAccount          Flag = "NEW_ACCOUNT"
	FlagHighFrequency       Flag = "HIGH_FREQUENCY"
	FlagRoundAmount         Flag = "ROUND_AMOUNT"
	FlagRapidTurnover       Flag = "RAPID_TURNOVER"
	FlagStructuring         Flag = "SMALL_TXN_STRUCTURING"
	FlagCrossBorderHighRisk Flag = "CROSS_BORDER_HIGH_RISK"
)

// Context is the immutable snapshot of inputs to one scoring pass.
// It is built once per evaluation and never mutated by rules.
type Context struct {
	UserID          uint
	TransactionType string
	Amount          float64
	Currency        string
	Destination     string
	AccountAgeDays  int
	TxCount24h      int
	KYCVerified     bool
}

// Contribution is the output of one rule: points plus optional flags.
type Contribution struct {
	Rule   string
	Points int
	Flags  []Flag
}

// SignalProvider is the read-only account/transaction history accessor
// rules query. Implementations live in the repositories layer.
type SignalProvider interface {
	AccountAge(ctx context.Context, userID uint) (int, error)
	TransactionCount24h(ctx context.Context, userID uint) (int, error)
	DailyDepositTotal(ctx context.Context, userID uint) (float64, error)
	RapidTurnoverCount(ctx context.Context, userID uint, window time.Duration) (int, error)
	SmallDepositCount24h(ctx context.Context, userID uint, threshold float64) (int, error)
}

// Rule is one independently evaluable risk signal. Evaluate must be safe
// to run concurrently with other rules and must not depend on their output.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, rc Context, signals SignalProvider) (Contribution, error)
}
