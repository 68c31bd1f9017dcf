package kyc

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"aegis/internal/models"
)

// DocumentSignalProvider scores the automated identity sub-checks.
// Production deployments plug a computer-vision/OCR backend in here; the
// pipeline itself never changes.
type DocumentSignalProvider interface {
	ScoreDocumentQuality(ctx context.Context, submission *models.KYCSubmission) (float64, error)
	ScoreFaceMatch(ctx context.Context, submission *models.KYCSubmission) (float64, error)
	ScoreAuthenticity(ctx context.Context, submission *models.KYCSubmission) (float64, error)
	ScoreAddressMatch(ctx context.Context, submission *models.KYCSubmission) (float64, error)
}

// StubProvider is the development scorer: uniform scores in [70,100),
// standing in for the real document APIs.
type StubProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewStubProvider() *StubProvider {
	return &StubProvider{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (p *StubProvider) score() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64()*30 + 70
}

func (p *StubProvider) ScoreDocumentQuality(context.Context, *models.KYCSubmission) (float64, error) {
	return p.score(), nil
}

func (p *StubProvider) ScoreFaceMatch(context.Context, *models.KYCSubmission) (float64, error) {
	return p.score(), nil
}

func (p *StubProvider) ScoreAuthenticity(context.Context, *models.KYCSubmission) (float64, error) {
	return p.score(), nil
}

func (p *StubProvider) ScoreAddressMatch(context.Context, *models.KYCSubmission) (float64, error) {
	return p.score(), nil
}
