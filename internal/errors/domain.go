// Package errors defines the coded error taxonomy shared across services.
// Handlers map DomainError codes onto HTTP statuses; services return them
// verbatim so callers can tell retryable failures from terminal ones.
package errors

// DomainError is an error with a stable machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Is lets errors.Is match sentinel DomainError values by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}
