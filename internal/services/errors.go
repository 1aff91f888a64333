package services

import "errors"

// Errors surfaced by the access broker and workflow services. Handlers branch on
// them with errors.Is to pick a status code.
var (
	ErrUnknownService   = errors.New("unknown_service")
	ErrQuotaExceeded    = errors.New("quota_exceeded")
	ErrRateLimited      = errors.New("rate_limited")
	ErrInvalidToken     = errors.New("invalid_token")
	ErrMissingToken     = errors.New("missing_token")
	ErrMissingSecret    = errors.New("signing secret is required")
	ErrMalformedSteps   = errors.New("malformed step list")
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthenticated  = errors.New("unauthenticated")
)
