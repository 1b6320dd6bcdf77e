package itinerary

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// Options configures a synthesis run.
type Options struct {
	// HomeAddress is where every day starts and ends.
	HomeAddress string

	// MaxDuration drops legs whose raw travel time exceeds it. Zero means no cap.
	MaxDuration time.Duration

	// Location is the zone used to derive segment dates. Nil means time.Local.
	Location *time.Location

	// NewID generates segment IDs. Defaults to a random UUID.
	NewID func() string
}

// Synthesize walks one day's events in start order and returns the transit
// segments for it: an outbound leg before every stop that is not at the
// previous stop's place, and a final leg home after the last stop.
//
// Lookup failures, missing routes and over-cap durations produce no leg and
// no error. Events must be sorted ascending by start; empty input yields nil.
func Synthesize(ctx context.Context, lookup driven.TransitLookup, events []domain.LocatedEvent, opts Options) []domain.TransitSegment {
	if len(events) == 0 {
		return nil
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	var segments []domain.TransitSegment
	lastLocation := opts.HomeAddress
	lastLabel := domain.HomeLabel

	for i := range events {
		ev := &events[i]
		label := labelFor(ev, opts.HomeAddress)

		if !Equivalent(lastLocation, ev.Location) {
			if travel, ok := legDuration(ctx, lookup, lastLocation, ev.Location, ev.Start, domain.ArriveBy, opts.MaxDuration); ok {
				start := ev.Start.Add(-travel)
				segments = append(segments, domain.TransitSegment{
					ID:          newID(),
					Title:       lastLabel + " > " + label,
					Origin:      lastLocation,
					Destination: ev.Location,
					Start:       start,
					End:         ev.Start,
					Date:        domain.DateOf(start, opts.Location),
				})
			}
		}

		lastLocation = ev.Location
		lastLabel = label
	}

	last := &events[len(events)-1]
	if !Equivalent(last.Location, opts.HomeAddress) {
		if travel, ok := legDuration(ctx, lookup, last.Location, opts.HomeAddress, last.End, domain.DepartAt, opts.MaxDuration); ok {
			segments = append(segments, domain.TransitSegment{
				ID:          newID(),
				Title:       lastLabel + " > " + domain.HomeLabel,
				Origin:      last.Location,
				Destination: opts.HomeAddress,
				Start:       last.End,
				End:         last.End.Add(travel),
				Date:        domain.DateOf(last.End, opts.Location),
			})
		}
	}

	return segments
}

func labelFor(ev *domain.LocatedEvent, home string) string {
	if Equivalent(ev.Location, home) {
		return domain.HomeLabel
	}
	return ev.Title
}

// legDuration looks up and rounds one leg. ok is false when no leg should be emitted.
func legDuration(ctx context.Context, lookup driven.TransitLookup, origin, dest string, at time.Time, anchor domain.TimeAnchor, limit time.Duration) (time.Duration, bool) {
	raw, err := lookup.Duration(ctx, origin, dest, at, anchor)
	if err != nil {
		logger.Warn("transit lookup %q -> %q (%s %s): %v", origin, dest, anchor, at.Format(time.RFC3339), err)
		return 0, false
	}
	if raw <= 0 {
		logger.Debug("transit lookup %q -> %q returned %s, skipping", origin, dest, raw)
		return 0, false
	}
	if limit > 0 && raw > limit {
		logger.Info("skipping leg %q -> %q: %s exceeds cap of %s", origin, dest, raw, limit)
		return 0, false
	}
	return RoundUp(raw), true
}
