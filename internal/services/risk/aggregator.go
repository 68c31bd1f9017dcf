package risk

import (
	"context"
	"time"

	"aegis/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Risk level thresholds over the clamped 0-100 score.
const (
	highRiskThreshold   = 70
	mediumRiskThreshold = 40
	maxScore            = 100
)

// Result is the merged outcome of one scoring pass.
type Result struct {
	Score         int
	Level         string
	Flags         []Flag
	Contributions []Contribution
	// Degraded lists rules that failed or timed out and contributed zero.
	Degraded []string
}

// AggregatorConfig tunes rule execution.
type AggregatorConfig struct {
	RuleTimeout time.Duration // per-rule budget, signal lookups included
	Parallelism int           // bounded fan-out width
}

// Aggregator fans rule evaluation out over a bounded worker group and
// merges contributions deterministically in rule order. A failing rule
// degrades to zero points instead of aborting the pass.
type Aggregator struct {
	rules  []Rule
	config AggregatorConfig
	logger *zap.Logger
}

// NewAggregator creates an aggregator over the given rule set.
func NewAggregator(rules []Rule, config AggregatorConfig, logger *zap.Logger) *Aggregator {
	if config.RuleTimeout <= 0 {
		config.RuleTimeout = 2 * time.Second
	}
	if config.Parallelism <= 0 {
		config.Parallelism = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{rules: rules, config: config, logger: logger}
}

// Score evaluates every rule against the snapshot and merges the results.
// The outcome is deterministic for a fixed snapshot and signal state no
// matter which order the rules finish in.
func (a *Aggregator) Score(ctx context.Context, rc Context, signals SignalProvider) Result {
	contributions := make([]Contribution, len(a.rules))
	failed := make([]error, len(a.rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Parallelism)
	for i, rule := range a.rules {
		i, rule := i, rule
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(gctx, a.config.RuleTimeout)
			defer cancel()

			c, err := rule.Evaluate(rctx, rc, signals)
			if err != nil {
				// Recovered locally: the rule contributes nothing.
				failed[i] = err
				return nil
			}
			contributions[i] = c
			return nil
		})
	}
	g.Wait() //nolint:errcheck // rule errors are captured per slot

	result := Result{Contributions: make([]Contribution, 0, len(a.rules))}
	seen := make(map[Flag]bool)
	for i, rule := range a.rules {
		if err := failed[i]; err != nil {
			a.logger.Warn("risk rule degraded",
				zap.String("rule", rule.Name()),
				zap.Uint("user_id", rc.UserID),
				zap.Error(err))
			result.Degraded = append(result.Degraded, rule.Name())
			continue
		}
		c := contributions[i]
		result.Score += c.Points
		result.Contributions = append(result.Contributions, c)
		for _, f := range c.Flags {
			if !seen[f] {
				seen[f] = true
				result.Flags = append(result.Flags, f)
			}
		}
	}

	if result.Score > maxScore {
		result.Score = maxScore
	}
	if result.Score < 0 {
		result.Score = 0
	}
	result.Level = LevelForScore(result.Score)
	return result
}

// LevelForScore buckets a clamped score into low, medium or high.
func LevelForScore(score int) string {
	switch {
	case score >= highRiskThreshold:
		return models.RiskLevelHigh
	case score >= mediumRiskThreshold:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}
