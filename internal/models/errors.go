package models

import "errors"

// Domain errors. Callers wrap them with fmt.Errorf("%w: ...") and handlers map
// them to HTTP statuses with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAuth              = errors.New("authentication failed")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
)
