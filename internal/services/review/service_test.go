package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	errs "aegis/internal/errors"
	"aegis/internal/models"
	"aegis/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memScreeningRepo is a mutex-guarded in-memory screening store with the
// same compare-and-set semantics as the database implementation.
type memScreeningRepo struct {
	mu      sync.Mutex
	records map[uint]*models.AMLScreening
}

func newMemScreeningRepo(records ...*models.AMLScreening) *memScreeningRepo {
	r := &memScreeningRepo{records: make(map[uint]*models.AMLScreening)}
	for _, rec := range records {
		r.records[rec.ID] = rec
	}
	return r
}

func (r *memScreeningRepo) Create(_ context.Context, s *models.AMLScreening) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[s.ID] = s
	return nil
}

func (r *memScreeningRepo) GetByID(_ context.Context, id uint) (*models.AMLScreening, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *memScreeningRepo) LatestByUser(context.Context, uint) (*models.AMLScreening, error) {
	return nil, errs.ErrRecordNotFound
}

func (r *memScreeningRepo) ListPendingReview(context.Context, int) ([]models.AMLScreening, error) {
	return nil, nil
}

func (r *memScreeningRepo) TransitionStatus(_ context.Context, id uint, from, to string, fields map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.Status != from {
		return false, nil
	}
	rec.Status = to
	applyReviewFields(rec, fields)
	return true, nil
}

func applyReviewFields(rec *models.AMLScreening, fields map[string]interface{}) {
	if v, ok := fields["reviewer_id"].(uint); ok {
		rec.ReviewerID = &v
	}
	if v, ok := fields["review_notes"].(string); ok {
		rec.ReviewNotes = v
	}
	if v, ok := fields["reviewed_at"].(time.Time); ok {
		rec.ReviewedAt = &v
	}
}

type memMonitoringRepo struct {
	mu      sync.Mutex
	records map[uint]*models.MonitoringRecord
}

func newMemMonitoringRepo(records ...*models.MonitoringRecord) *memMonitoringRepo {
	r := &memMonitoringRepo{records: make(map[uint]*models.MonitoringRecord)}
	for _, rec := range records {
		r.records[rec.ID] = rec
	}
	return r
}

func (r *memMonitoringRepo) Create(_ context.Context, rec *models.MonitoringRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec
	return nil
}

func (r *memMonitoringRepo) GetByID(_ context.Context, id uint) (*models.MonitoringRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *memMonitoringRepo) ListPendingReview(context.Context, int) ([]models.MonitoringRecord, error) {
	return nil, nil
}

func (r *memMonitoringRepo) TransitionStatus(_ context.Context, id uint, from, to string, _ map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.Status != from {
		return false, nil
	}
	rec.Status = to
	return true, nil
}

func (r *memMonitoringRepo) ComplianceReport(context.Context, time.Time, time.Time) ([]repositories.ComplianceReportRow, error) {
	return nil, nil
}

// memKYCRepo also tracks the owning user's verified flag so the approval
// coupling is observable.
type memKYCRepo struct {
	mu          sync.Mutex
	records     map[uint]*models.KYCSubmission
	usersByID   map[uint]*models.User
	approvedIDs []uint
}

func newMemKYCRepo(user *models.User, records ...*models.KYCSubmission) *memKYCRepo {
	r := &memKYCRepo{
		records:   make(map[uint]*models.KYCSubmission),
		usersByID: map[uint]*models.User{user.ID: user},
	}
	for _, rec := range records {
		r.records[rec.ID] = rec
	}
	return r
}

func (r *memKYCRepo) Create(_ context.Context, s *models.KYCSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[s.ID] = s
	return nil
}

func (r *memKYCRepo) GetByID(_ context.Context, id uint) (*models.KYCSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *memKYCRepo) LatestByUser(context.Context, uint) (*models.KYCSubmission, error) {
	return nil, errs.ErrRecordNotFound
}

func (r *memKYCRepo) ListPendingReview(context.Context, int) ([]models.KYCSubmission, error) {
	return nil, nil
}

func (r *memKYCRepo) RecordAutoChecks(context.Context, uint, models.JSON, int, string) error {
	return nil
}

func (r *memKYCRepo) TransitionStatus(_ context.Context, id uint, from, to string, _ map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.Status != from {
		return false, nil
	}
	rec.Status = to
	return true, nil
}

func (r *memKYCRepo) ApproveWithUserFlag(_ context.Context, id uint, from string, _ map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return false, errs.ErrRecordNotFound
	}
	if rec.Status != from {
		return false, nil
	}
	rec.Status = models.StatusApproved
	if user, ok := r.usersByID[rec.UserID]; ok {
		user.KYCVerified = true
		now := time.Now()
		user.KYCVerifiedAt = &now
	}
	r.approvedIDs = append(r.approvedIDs, id)
	return true, nil
}

func newTestService(screenings *memScreeningRepo, monitoring *memMonitoringRepo, kyc *memKYCRepo) Service {
	if screenings == nil {
		screenings = newMemScreeningRepo()
	}
	if monitoring == nil {
		monitoring = newMemMonitoringRepo()
	}
	if kyc == nil {
		kyc = newMemKYCRepo(&models.User{})
	}
	return NewService(screenings, monitoring, kyc, nil)
}

func TestSubmitReviewScreeningApprove(t *testing.T) {
	repo := newMemScreeningRepo(&models.AMLScreening{ID: 1, Status: models.StatusReviewRequired})
	svc := newTestService(repo, nil, nil)

	err := svc.SubmitReview(context.Background(), KindScreening, 1, DecisionApprove, 9, "documents checked")
	require.NoError(t, err)

	rec := repo.records[1]
	assert.Equal(t, models.StatusApproved, rec.Status)
	require.NotNil(t, rec.ReviewerID)
	assert.Equal(t, uint(9), *rec.ReviewerID)
	assert.Equal(t, "documents checked", rec.ReviewNotes)
	assert.NotNil(t, rec.ReviewedAt)
}

func TestSubmitReviewIllegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		status string
	}{
		{"passed record accepts no decision", models.StatusPassed},
		{"approved is terminal", models.StatusApproved},
		{"rejected is terminal", models.StatusRejected},
		{"pending needs the machine first", models.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemScreeningRepo(&models.AMLScreening{ID: 1, Status: tt.status})
			svc := newTestService(repo, nil, nil)

			err := svc.SubmitReview(context.Background(), KindScreening, 1, DecisionReject, 9, "")
			assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)
			assert.Equal(t, tt.status, repo.records[1].Status, "record must be untouched")
		})
	}
}

func TestSubmitReviewUnknownDecision(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	err := svc.SubmitReview(context.Background(), KindScreening, 1, Decision("escalate"), 9, "")
	assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)
}

func TestSubmitReviewUnknownRecord(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	err := svc.SubmitReview(context.Background(), KindScreening, 404, DecisionApprove, 9, "")
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestSubmitReviewUnknownKind(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	err := svc.SubmitReview(context.Background(), RecordKind("dispute"), 1, DecisionApprove, 9, "")
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestSubmitReviewMonitoringReject(t *testing.T) {
	repo := newMemMonitoringRepo(&models.MonitoringRecord{ID: 3, Status: models.StatusReviewRequired})
	svc := newTestService(nil, repo, nil)

	err := svc.SubmitReview(context.Background(), KindMonitoring, 3, DecisionReject, 9, "structuring confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, repo.records[3].Status)
}

func TestSubmitReviewKYCApproveFlipsUserFlag(t *testing.T) {
	user := &models.User{}
	user.ID = 7
	repo := newMemKYCRepo(user, &models.KYCSubmission{ID: 2, UserID: 7, Status: models.StatusManualReview})
	svc := newTestService(nil, nil, repo)

	err := svc.SubmitReview(context.Background(), KindKYC, 2, DecisionApprove, 9, "docs legible")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, repo.records[2].Status)
	assert.True(t, user.KYCVerified, "approval must flip the user flag")
	assert.NotNil(t, user.KYCVerifiedAt)
	assert.Equal(t, []uint{2}, repo.approvedIDs)
}

func TestSubmitReviewKYCRejectLeavesUserFlag(t *testing.T) {
	user := &models.User{}
	user.ID = 7
	repo := newMemKYCRepo(user, &models.KYCSubmission{ID: 2, UserID: 7, Status: models.StatusManualReview})
	svc := newTestService(nil, nil, repo)

	err := svc.SubmitReview(context.Background(), KindKYC, 2, DecisionReject, 9, "selfie mismatch")
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, repo.records[2].Status)
	assert.False(t, user.KYCVerified)
	assert.Empty(t, repo.approvedIDs, "rejection must not take the approval path")
}

func TestSubmitReviewConcurrentReviewersExactlyOneWins(t *testing.T) {
	repo := newMemScreeningRepo(&models.AMLScreening{ID: 1, Status: models.StatusReviewRequired})
	svc := newTestService(repo, nil, nil)

	results := make(chan error, 2)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for _, decision := range []Decision{DecisionApprove, DecisionReject} {
		wg.Add(1)
		go func(d Decision) {
			defer wg.Done()
			<-start
			results <- svc.SubmitReview(context.Background(), KindScreening, 1, d, 9, "")
		}(decision)
	}
	close(start)
	wg.Wait()
	close(results)

	// The loser sees ErrStaleState when it raced past the status read, or
	// ErrInvalidStateTransition when it read the already-terminal status.
	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, errs.ErrStaleState), errors.Is(err, errs.ErrInvalidStateTransition):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one reviewer commits")
	assert.Equal(t, 1, conflicts, "the loser surfaces a conflict")
	assert.True(t, IsTerminal(repo.records[1].Status))
}
