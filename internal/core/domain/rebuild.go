package domain

import "time"

// RebuildState is the per-date phase of a transit rebuild.
type RebuildState string

// Rebuild phases. A date is Idle unless a rebuild is in flight.
const (
	RebuildIdle       RebuildState = "idle"
	RebuildClearing   RebuildState = "clearing"
	RebuildRebuilding RebuildState = "rebuilding"
)

// RebuildResult reports what a single date rebuild did.
type RebuildResult struct {
	// Date is the YYYY-MM-DD key that was rebuilt.
	Date string

	// RemoteCleared is how many events were removed from the destination calendar.
	RemoteCleared int

	// LocalCleared is how many stored segments were removed.
	LocalCleared int

	// Events is the number of located events found for the date.
	Events int

	// Orphaned is set when the date had no located events and stored rows were cleaned.
	Orphaned bool

	// Segments is the number of segments synthesised.
	Segments int

	// Created is how many segments reached the destination calendar.
	Created int

	// Failures counts sub-steps that failed and were skipped.
	Failures int

	// Errors holds the messages of the failed sub-steps.
	Errors []string

	// StartedAt and EndedAt bound the rebuild.
	StartedAt time.Time
	EndedAt   time.Time
}

// AddError records a failed sub-step.
func (r *RebuildResult) AddError(err error) {
	if err == nil {
		return
	}
	r.Failures++
	r.Errors = append(r.Errors, err.Error())
}

// OK reports whether every sub-step succeeded.
func (r *RebuildResult) OK() bool {
	return r.Failures == 0
}
