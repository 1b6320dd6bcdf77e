package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// CalendarSource reads appointments from the source calendar.
type CalendarSource interface {
	// FetchLocatedEvents returns the timed events with a location that start
	// in [start, end). All-day entries are excluded and locations are
	// normalised before they are returned. A single malformed entry is
	// skipped, not reported as an error.
	FetchLocatedEvents(ctx context.Context, start, end time.Time) ([]domain.LocatedEvent, error)

	// Validate checks that the calendar is reachable with the configured credentials.
	// Returns domain.ErrConnectorValidation wrapped with the cause.
	Validate(ctx context.Context) error
}

// CalendarDestination writes transit events to the destination calendar.
type CalendarDestination interface {
	// CreateTransitEvent writes one segment as a calendar event.
	CreateTransitEvent(ctx context.Context, seg domain.TransitSegment) error

	// DeleteTransitEvent removes the event written for seg. An event that is
	// already gone is not an error.
	DeleteTransitEvent(ctx context.Context, seg domain.TransitSegment) error

	// DeleteTransitEventsForDate removes every timed event starting on date,
	// except those written for the segment IDs in keep, and returns how many
	// were removed. Deleting from an empty date is not an error.
	DeleteTransitEventsForDate(ctx context.Context, date string, keep ...string) (int, error)

	// Validate checks that the calendar is reachable with the configured credentials.
	Validate(ctx context.Context) error
}
