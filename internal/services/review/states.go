package review

import "aegis/internal/models"

// RecordKind identifies which audit trail a review targets.
type RecordKind string

const (
	KindScreening  RecordKind = "screening"
	KindMonitoring RecordKind = "monitoring"
	KindKYC        RecordKind = "kyc"
)

// Decision is a reviewer's verdict.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status returns the terminal status a decision commits.
func (d Decision) Status() string {
	if d == DecisionApprove {
		return models.StatusApproved
	}
	return models.StatusRejected
}

// transitions is the full state machine. pending fans out to the
// machine-set states; only the review states accept a human decision;
// approved and rejected accept nothing.
var transitions = map[string][]string{
	models.StatusPending: {
		models.StatusPassed,
		models.StatusReviewRequired,
		models.StatusManualReview,
	},
	models.StatusReviewRequired: {
		models.StatusApproved,
		models.StatusRejected,
	},
	models.StatusManualReview: {
		models.StatusApproved,
		models.StatusRejected,
	},
	models.StatusPassed:   {},
	models.StatusApproved: {},
	models.StatusRejected: {},
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status accepts no further transitions.
func IsTerminal(status string) bool {
	next, ok := transitions[status]
	return ok && len(next) == 0
}
