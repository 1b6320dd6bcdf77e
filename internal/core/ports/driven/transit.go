package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// TransitLookup resolves travel durations between free-text addresses.
// Implementations geocode both ends and query a router.
type TransitLookup interface {
	// Duration returns the travel time from origin to destination.
	// at is the arrival time for domain.ArriveBy and the departure time for
	// domain.DepartAt. Returns domain.ErrNoRoute when no route exists; any
	// other error is also treated as "no route" by callers.
	Duration(ctx context.Context, origin, destination string, at time.Time, anchor domain.TimeAnchor) (time.Duration, error)
}
