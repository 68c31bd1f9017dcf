package models

// Workflow statuses shared by screening, monitoring and KYC records.
// pending, passed, review_required and manual_review are machine-set;
// approved and rejected come from a human reviewer and are terminal.
const (
	StatusPending        = "pending"
	StatusPassed         = "passed"
	StatusReviewRequired = "review_required"
	StatusManualReview   = "manual_review"
	StatusApproved       = "approved"
	StatusRejected       = "rejected"
)

// Risk levels derived from the numeric risk score.
const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)
