// Package metrics is the prometheus implementation of the per-service
// MetricsCollector interfaces, exposed on a standalone /metrics listener
// so scraping stays off the API port.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ComplianceMetrics satisfies the screening, monitoring and kyc
// MetricsCollector interfaces with one registry.
type ComplianceMetrics struct {
	registry *prometheus.Registry

	screenings    *prometheus.CounterVec
	riskScores    prometheus.Histogram
	degradedRules *prometheus.CounterVec

	monitoringPasses prometheus.Counter
	monitoringAlerts prometheus.Counter
	reviewFlagged    prometheus.Counter

	kycAutoChecks  *prometheus.CounterVec
	kycCheckScores prometheus.Histogram

	logger *zap.Logger
}

func NewComplianceMetrics(logger *zap.Logger) *ComplianceMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := prometheus.NewRegistry()

	return &ComplianceMetrics{
		registry: registry,
		screenings: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "aml_screenings_total",
			Help: "AML screenings by resulting risk level",
		}, []string{"risk_level"}),
		riskScores: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "aml_risk_score_distribution",
			Help:    "Distribution of AML risk scores",
			Buckets: []float64{0, 20, 40, 60, 70, 80, 100},
		}),
		degradedRules: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "risk_rules_degraded_total",
			Help: "Rule evaluations that failed or timed out",
		}, []string{"rule"}),
		monitoringPasses: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "monitoring_passes_total",
			Help: "Transaction events run through monitoring",
		}),
		monitoringAlerts: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "monitoring_alerts_total",
			Help: "Monitoring rule alerts raised",
		}),
		reviewFlagged: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "monitoring_review_required_total",
			Help: "Monitoring passes that require human review",
		}),
		kycAutoChecks: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_auto_checks_total",
			Help: "KYC auto-check pipeline runs by outcome",
		}, []string{"result"}),
		kycCheckScores: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "kyc_auto_check_score_distribution",
			Help:    "Distribution of KYC auto-check scores",
			Buckets: []float64{0, 40, 60, 70, 85, 100},
		}),
		logger: logger,
	}
}

// RecordScreening implements screening.MetricsCollector.
func (m *ComplianceMetrics) RecordScreening(riskLevel string, score int) {
	m.screenings.WithLabelValues(riskLevel).Inc()
	m.riskScores.Observe(float64(score))
}

// RecordDegradedRule implements both the screening and monitoring collectors.
func (m *ComplianceMetrics) RecordDegradedRule(rule string) {
	m.degradedRules.WithLabelValues(rule).Inc()
}

// RecordMonitoring implements monitoring.MetricsCollector.
func (m *ComplianceMetrics) RecordMonitoring(alertCount int, requiresReview bool) {
	m.monitoringPasses.Inc()
	m.monitoringAlerts.Add(float64(alertCount))
	if requiresReview {
		m.reviewFlagged.Inc()
	}
}

// RecordAutoCheck implements kyc.MetricsCollector.
func (m *ComplianceMetrics) RecordAutoCheck(score int, passed bool) {
	result := "manual_review"
	if passed {
		result = "passed"
	}
	m.kycAutoChecks.WithLabelValues(result).Inc()
	m.kycCheckScores.Observe(float64(score))
}

// Handler returns the scrape handler for the private registry.
func (m *ComplianceMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve blocks on a dedicated metrics listener.
func (m *ComplianceMetrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	m.logger.Info("metrics listener started", zap.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}
