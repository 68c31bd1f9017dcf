package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "aegis/internal/errors"
	"aegis/internal/models"
	"aegis/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMonitoringRepo struct {
	created   []*models.MonitoringRecord
	createErr error
	report    []repositories.ComplianceReportRow
}

func (r *fakeMonitoringRepo) Create(_ context.Context, record *models.MonitoringRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	record.ID = uint(len(r.created) + 1)
	r.created = append(r.created, record)
	return nil
}

func (r *fakeMonitoringRepo) GetByID(_ context.Context, id uint) (*models.MonitoringRecord, error) {
	for _, rec := range r.created {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, errs.ErrRecordNotFound
}

func (r *fakeMonitoringRepo) ListPendingReview(_ context.Context, limit int) ([]models.MonitoringRecord, error) {
	var out []models.MonitoringRecord
	for _, rec := range r.created {
		if rec.RequiresReview && rec.ReviewedAt == nil && len(out) < limit {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakeMonitoringRepo) TransitionStatus(context.Context, uint, string, string, map[string]interface{}) (bool, error) {
	return false, nil
}

func (r *fakeMonitoringRepo) ComplianceReport(context.Context, time.Time, time.Time) ([]repositories.ComplianceReportRow, error) {
	return r.report, nil
}

type fakeSignals struct {
	txCount      int
	depositTotal float64
	depositErr   error
	countErr     error
}

func (s *fakeSignals) AccountAge(context.Context, uint) (int, error) { return 100, nil }

func (s *fakeSignals) TransactionCount24h(context.Context, uint) (int, error) {
	return s.txCount, s.countErr
}

func (s *fakeSignals) DailyDepositTotal(context.Context, uint) (float64, error) {
	return s.depositTotal, s.depositErr
}

func (s *fakeSignals) RapidTurnoverCount(context.Context, uint, time.Duration) (int, error) {
	return 0, nil
}

func (s *fakeSignals) SmallDepositCount24h(context.Context, uint, float64) (int, error) {
	return 0, nil
}

func alertRules(alerts []models.Alert) []string {
	names := make([]string, len(alerts))
	for i, a := range alerts {
		names[i] = a.Rule
	}
	return names
}

func TestMonitorTransaction(t *testing.T) {
	tests := []struct {
		name           string
		signals        *fakeSignals
		tx             TransactionEvent
		wantPassed     bool
		wantReview     bool
		wantStatus     string
		wantAlertRules []string
	}{
		{
			name:       "clean transaction passes with a record",
			signals:    &fakeSignals{},
			tx:         TransactionEvent{Type: "deposit", Amount: 200, Currency: "GBP"},
			wantPassed: true,
			wantStatus: models.StatusPassed,
		},
		{
			name:           "large single transaction requires review",
			signals:        &fakeSignals{},
			tx:             TransactionEvent{Type: "withdrawal", Amount: 10001, Currency: "GBP"},
			wantReview:     true,
			wantStatus:     models.StatusReviewRequired,
			wantAlertRules: []string{"Large Single Transaction"},
		},
		{
			name:           "cumulative daily deposits over the cap require review",
			signals:        &fakeSignals{depositTotal: 15001},
			tx:             TransactionEvent{Type: "deposit", Amount: 50, Currency: "GBP"},
			wantReview:     true,
			wantStatus:     models.StatusReviewRequired,
			wantAlertRules: []string{"Cumulative Daily Deposits"},
		},
		{
			name:           "velocity alone only flags, no review",
			signals:        &fakeSignals{txCount: 11},
			tx:             TransactionEvent{Type: "trade", Amount: 10, Currency: "GBP"},
			wantReview:     false,
			wantStatus:     models.StatusPassed,
			wantAlertRules: []string{"Rapid Transaction Velocity"},
		},
		{
			name:           "cross-border over the threshold requires review",
			signals:        &fakeSignals{},
			tx:             TransactionEvent{Type: "withdrawal", Amount: 5001, Currency: "GBP", CrossBorder: true},
			wantReview:     true,
			wantStatus:     models.StatusReviewRequired,
			wantAlertRules: []string{"Cross-Border High Risk"},
		},
		{
			name:       "domestic transaction over the cross-border threshold passes",
			signals:    &fakeSignals{},
			tx:         TransactionEvent{Type: "withdrawal", Amount: 5001, Currency: "GBP"},
			wantPassed: true,
			wantStatus: models.StatusPassed,
		},
		{
			name:    "multiple rules fire together",
			signals: &fakeSignals{txCount: 20, depositTotal: 20000},
			tx:      TransactionEvent{Type: "deposit", Amount: 11000, Currency: "GBP", CrossBorder: true},
			wantAlertRules: []string{
				"Large Single Transaction",
				"Cumulative Daily Deposits",
				"Rapid Transaction Velocity",
				"Cross-Border High Risk",
			},
			wantReview: true,
			wantStatus: models.StatusReviewRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeMonitoringRepo{}
			svc := NewService(repo, DefaultRules(tt.signals), Config{}, nil, nil)

			result, err := svc.MonitorTransaction(context.Background(), 1, tt.tx)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPassed, result.Passed)
			assert.Equal(t, tt.wantReview, result.RequiresReview)
			if tt.wantAlertRules == nil {
				assert.Empty(t, result.Alerts)
			} else {
				assert.Equal(t, tt.wantAlertRules, alertRules(result.Alerts))
			}

			require.Len(t, repo.created, 1, "every monitored event must be recorded")
			record := repo.created[0]
			assert.Equal(t, tt.wantStatus, record.Status)
			assert.Equal(t, tt.wantReview, record.RequiresReview)
			assert.Equal(t, tt.tx.Amount, record.TransactionData["amount"])
			assert.NotEmpty(t, record.Reference)
		})
	}
}

func TestMonitorTransactionRuleFailureIsIsolated(t *testing.T) {
	// The deposit-total lookup fails; the other three rules still run and
	// the large-transaction alert still fires.
	signals := &fakeSignals{depositErr: errors.New("replica lag")}
	repo := &fakeMonitoringRepo{}
	svc := NewService(repo, DefaultRules(signals), Config{}, nil, nil)

	result, err := svc.MonitorTransaction(context.Background(), 1, TransactionEvent{
		Type: "withdrawal", Amount: 12000, Currency: "GBP",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Large Single Transaction"}, alertRules(result.Alerts))
	assert.True(t, result.RequiresReview)
	assert.Len(t, repo.created, 1)
}

func TestMonitorTransactionPersistFailurePropagates(t *testing.T) {
	repo := &fakeMonitoringRepo{createErr: errors.New("disk full")}
	svc := NewService(repo, DefaultRules(&fakeSignals{}), Config{}, nil, nil)

	_, err := svc.MonitorTransaction(context.Background(), 1, TransactionEvent{Amount: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist monitoring record")
}

func TestGenerateComplianceReport(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	repo := &fakeMonitoringRepo{report: []repositories.ComplianceReportRow{
		{Date: day, TotalMonitored: 40, FlaggedCount: 3, UniqueUsers: 17},
	}}
	svc := NewService(repo, DefaultRules(&fakeSignals{}), Config{}, nil, nil)

	rows, err := svc.GenerateComplianceReport(context.Background(), day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 40, rows[0].TotalMonitored)
	assert.Equal(t, 3, rows[0].FlaggedCount)
}
