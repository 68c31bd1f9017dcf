// Package notification delivers compliance alerts. Delivery is
// best-effort: screening never rolls back because an alert failed.
package notification

import (
	"context"
	"encoding/json"

	"aegis/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sink receives high-risk screening alerts for the compliance team.
type Sink interface {
	NotifyComplianceTeam(ctx context.Context, userID uint, screening *models.AMLScreening) error
}

// LogSink writes alerts to the structured log. It is the default sink in
// development and the fallback when no broker is configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) NotifyComplianceTeam(_ context.Context, userID uint, screening *models.AMLScreening) error {
	s.logger.Warn("high-risk transaction flagged for review",
		zap.Uint("user_id", userID),
		zap.String("screening_ref", screening.Reference),
		zap.Int("risk_score", screening.RiskScore),
		zap.Strings("flags", screening.Flags))
	return nil
}

// RedisSink publishes alerts on a redis channel consumed by the
// notification workers that fan out to email/Slack.
type RedisSink struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisSink(client *redis.Client, channel string, logger *zap.Logger) *RedisSink {
	if channel == "" {
		channel = "compliance.alerts"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSink{client: client, channel: channel, logger: logger}
}

func (s *RedisSink) NotifyComplianceTeam(ctx context.Context, userID uint, screening *models.AMLScreening) error {
	payload, err := json.Marshal(map[string]interface{}{
		"user_id":       userID,
		"screening_ref": screening.Reference,
		"risk_score":    screening.RiskScore,
		"risk_level":    screening.RiskLevel,
		"flags":         screening.Flags,
	})
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.logger.Error("failed to publish compliance alert",
			zap.String("channel", s.channel), zap.Error(err))
		return err
	}
	return nil
}
