package domain

import "time"

// DefaultEventDuration is applied when an upstream entry has a start but no end.
const DefaultEventDuration = time.Hour

// LocatedEvent is a timed source calendar appointment carrying a non-empty address.
// All-day entries never become LocatedEvents; source adapters drop them.
type LocatedEvent struct {
	// ID is the stable upstream identifier (iCalendar UID or provider event ID).
	ID string

	// Title is the event summary.
	Title string

	// Location is the normalised free-text address.
	Location string

	// Start is when the appointment begins.
	Start time.Time

	// End is when the appointment ends.
	End time.Time

	// Date is the YYYY-MM-DD calendar date of Start in the configured zone.
	Date string

	// CalendarID identifies the source calendar the event came from.
	CalendarID string

	// UpdatedAt is when the stored row was last written.
	UpdatedAt time.Time
}

// FingerprintRecord holds the last fingerprint computed for an event.
// The fingerprint covers title, location and start time only; a change to the
// end time alone does not make an event look changed.
type FingerprintRecord struct {
	// ID matches LocatedEvent.ID.
	ID string

	// Title and Location are kept for diagnostics.
	Title    string
	Location string

	// Date is the date the event belonged to when last fingerprinted.
	Date string

	// Hash is the hex digest of the transit-relevant fields.
	Hash string

	// LastProcessed is when the record was created or last changed.
	LastProcessed time.Time
}
