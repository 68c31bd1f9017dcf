package kyc

import (
	"context"
	"time"

	"aegis/internal/models"
)

// Submission is the document payload of a KYC attempt.
type Submission struct {
	IDType       string `json:"id_type"`
	IDNumber     string `json:"id_number"`
	IDFrontImage string `json:"id_front_image"`
	IDBackImage  string `json:"id_back_image"`
	SelfieImage  string `json:"selfie_image"`
	AddressProof string `json:"address_proof"`
}

// AutoCheckResult is the merged outcome of the automated sub-checks.
type AutoCheckResult struct {
	Score     int                `json:"score"`
	Checks    map[string]float64 `json:"checks"`
	Passed    bool               `json:"passed"`
	Degraded  []string           `json:"degraded,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Config tunes the auto-check pipeline.
type Config struct {
	// PassThreshold is inclusive: score >= threshold auto-passes.
	PassThreshold int
	CheckTimeout  time.Duration
}

// Service handles KYC submission intake and the auto-check pipeline.
type Service interface {
	SubmitKYC(ctx context.Context, userID uint, docs Submission) (*models.KYCSubmission, error)
	GetStatus(ctx context.Context, userID uint) (*models.KYCSubmission, error)
	GetPendingReviews(ctx context.Context, limit int) ([]models.KYCSubmission, error)
}

// MetricsCollector defines the KYC metrics hooks.
type MetricsCollector interface {
	RecordAutoCheck(score int, passed bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAutoCheck(int, bool) {}
