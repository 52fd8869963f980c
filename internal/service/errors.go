package service

import "errors"

// Service-level sentinel errors. Handlers map these onto HTTP statuses;
// everything else surfaces as an internal error with no detail leaked.
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRateLimited          = errors.New("too many attempts")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForgeryTokenMismatch = errors.New("anti-forgery token mismatch")
	ErrValidationFailed     = errors.New("validation failed")
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrStoreUnavailable     = errors.New("backing store unavailable")
	ErrSearchUnavailable    = errors.New("search is not configured")
)
