package port

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrMissingField      = errors.New("missing required field")
	ErrAuthRequired      = errors.New("authentication required")
	ErrSessionRequired   = errors.New("session required")
	ErrNotConfigured     = errors.New("not configured")
	ErrUpstreamFailure   = errors.New("upstream failure")
	ErrUpstreamMalformed = errors.New("upstream returned malformed response")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrExportInFlight    = errors.New("export already in flight")
	ErrSummaryNotReady   = errors.New("summary not generated")
)
