package domain

import "errors"

// Error kinds. Specific errors across the app wrap one of these so callers
// (the HTTP layer in particular) can branch on the kind with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("access denied")
)

// KindError is a sentinel that belongs to one of the error kinds above.
type KindError struct {
	Kind error
	Msg  string
}

func (e *KindError) Error() string { return e.Msg }

// Unwrap lets errors.Is match the kind.
func (e *KindError) Unwrap() error { return e.Kind }

// NewKindError builds a sentinel of the given kind.
func NewKindError(kind error, msg string) error {
	return &KindError{Kind: kind, Msg: msg}
}
