// Package calendar implements the calendar ports on the Google Calendar API.
package calendar

import (
	"context"
	"sort"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/transitsync/internal/connectors"
	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.CalendarSource = (*Source)(nil)

// Source reads located events from a Google calendar.
type Source struct {
	client *client
}

// NewSource creates a source over svc.
func NewSource(svc *calendar.Service, cfg Config) *Source {
	return &Source{client: newClient(svc, cfg)}
}

// FetchLocatedEvents returns the timed, located events starting in [start, end).
// Recurring events are expanded into their instances by the API.
func (s *Source) FetchLocatedEvents(ctx context.Context, start, end time.Time) ([]domain.LocatedEvent, error) {
	items, err := s.client.listEvents(ctx, start, end)
	if err != nil {
		return nil, err
	}

	loc := s.client.cfg.Location
	events := make([]domain.LocatedEvent, 0, len(items))
	for _, item := range items {
		entry, err := eventToEntry(item, s.client.cfg.CalendarID, loc)
		if err != nil {
			logger.Warn("google calendar: skipping %s: %v", item.Id, err)
			continue
		}
		ev, err := connectors.Locate(entry, loc)
		if err != nil {
			connectors.LogSkip(entry, err)
			continue
		}
		if ev.Start.Before(start) || !ev.Start.Before(end) {
			continue
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	logger.Debug("google calendar: %d located events between %s and %s", len(events),
		start.Format(time.RFC3339), end.Format(time.RFC3339))
	return events, nil
}

// Validate checks that the calendar can be read with the stored credentials.
func (s *Source) Validate(ctx context.Context) error {
	return s.client.validate(ctx)
}
