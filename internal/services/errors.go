package services

import "errors"

// Service-level sentinels. Handlers translate these to HTTP status codes,
// wrap with fmt.Errorf("context: %w", Err...) to add detail.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUnprocessable = errors.New("unprocessable")
)
