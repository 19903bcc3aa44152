package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidPassphrase = errors.New("invalid passphrase")
	ErrSessionNotFound   = errors.New("session not found")

	// ErrMirrorUnavailable is only ever logged; it never reaches a caller
	// of the order service.
	ErrMirrorUnavailable = errors.New("ledger mirror unavailable")
)
