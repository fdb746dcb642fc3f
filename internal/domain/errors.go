package domain

import "errors"

// ErrNotFound is returned when the requested vehicle does not exist
// upstream, in the cache, or in a full scan.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing required field, year out of range, unknown category for
// an image upload). Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrUpstream is returned when the spreadsheet backend answers with a
// non-OK HTTP status, an {ok:false} body, or an unparseable response.
// Handlers should map this to HTTP 502.
var ErrUpstream = errors.New("upstream error")

// ErrTimeout is returned when an upstream call exceeds its budget.
// Kept distinct from ErrUpstream so callers can tell "the upstream took
// too long" from "the upstream is unreachable".
// Handlers should map this to HTTP 502 with a distinguishing message.
var ErrTimeout = errors.New("upstream timeout")

// ErrUnauthorized is returned when no valid session accompanies a request.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when a valid session lacks the role an
// operation requires. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConfig is returned when required configuration is missing or invalid
// at the point of use. Never retried; the message is surfaced verbatim to
// the operator. Handlers should map this to HTTP 500.
var ErrConfig = errors.New("configuration error")
