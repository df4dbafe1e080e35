package catalog

import "errors"

var (
	// ErrValidation marks bad client input; *ValidationError wraps it.
	ErrValidation = errors.New("validation failed")
	ErrInvalidID  = errors.New("invalid audio id")
	ErrNotFound   = errors.New("audio not found")
	// ErrStorage is an object storage failure during ingest.
	ErrStorage = errors.New("object storage failure")
	// ErrStore is a catalog store failure.
	ErrStore = errors.New("catalog store failure")
)

// ValidationError carries a message that is safe to return to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func validationErr(msg string) error {
	return &ValidationError{Message: msg}
}
