package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown calendar, store or transit provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sweep is already running.
	// Periodic ticks that hit this error are coalesced, not queued.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrNoRoute indicates the transit lookup produced no usable duration.
	ErrNoRoute = errors.New("no route")

	// ErrGeocodeFailed indicates an address could not be resolved to coordinates.
	ErrGeocodeFailed = errors.New("geocode failed")

	// Calendar Errors.

	// ErrConnectorValidation indicates calendar validation failed.
	// The calendar is misconfigured, unreachable or credentials are invalid.
	ErrConnectorValidation = errors.New("connector validation failed")

	// ErrAllDayEvent indicates a calendar entry carries a date rather than a date-time.
	ErrAllDayEvent = errors.New("all-day event")

	// ErrMissingLocation indicates a calendar entry has no address.
	ErrMissingLocation = errors.New("missing location")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
