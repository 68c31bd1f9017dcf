package errors

var (
	// ErrInvalidStateTransition is returned when a review decision would
	// move a record against its state machine. Terminal; do not retry.
	ErrInvalidStateTransition = &DomainError{
		Code:    "INVALID_STATE_TRANSITION",
		Message: "record cannot move to the requested status",
	}
	// ErrStaleState is returned when a concurrent reviewer committed first.
	// Callers should reload the record and retry if still applicable.
	ErrStaleState = &DomainError{
		Code:    "STALE_STATE",
		Message: "record was modified by a concurrent review",
	}
	ErrKYCValidation = &DomainError{
		Code:    "KYC_VALIDATION_FAILED",
		Message: "missing required KYC documents",
	}
	ErrPersistence = &DomainError{
		Code:    "PERSISTENCE_FAILED",
		Message: "storage operation failed",
	}
	ErrRecordNotFound = &DomainError{
		Code:    "RECORD_NOT_FOUND",
		Message: "record not found",
	}
)
