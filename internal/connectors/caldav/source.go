package caldav

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/transitsync/internal/connectors"
	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.CalendarSource = (*Source)(nil)

// Source reads located events from a CalDAV collection.
type Source struct {
	client *Client
	loc    *time.Location
}

// NewSource creates a source over client. Dates and floating times use loc.
func NewSource(client *Client, loc *time.Location) *Source {
	if loc == nil {
		loc = time.Local
	}
	return &Source{client: client, loc: loc}
}

// FetchLocatedEvents returns the timed, located events starting in [start, end).
func (s *Source) FetchLocatedEvents(ctx context.Context, start, end time.Time) ([]domain.LocatedEvent, error) {
	objects, err := s.client.Query(ctx, start, end)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var events []domain.LocatedEvent
	for _, obj := range objects {
		entries, err := parseEntries(obj.Data, s.client.URL(), s.loc)
		if err != nil {
			logger.Warn("caldav: skipping %s: %v", obj.Href, err)
			continue
		}
		for _, entry := range entries {
			ev, err := connectors.Locate(entry, s.loc)
			if err != nil {
				connectors.LogSkip(entry, err)
				continue
			}
			if ev.Start.Before(start) || !ev.Start.Before(end) {
				continue
			}
			if _, dup := seen[ev.ID]; dup {
				continue
			}
			seen[ev.ID] = struct{}{}
			events = append(events, ev)
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	logger.Debug("caldav: %d located events between %s and %s", len(events),
		start.Format(time.RFC3339), end.Format(time.RFC3339))
	return events, nil
}

// Validate checks that the collection answers PROPFIND.
func (s *Source) Validate(ctx context.Context) error {
	return validate(ctx, s.client)
}

func validate(ctx context.Context, client *Client) error {
	name, err := client.DisplayName(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrConnectorValidation, client.URL(), err)
	}
	logger.Info("connected to calendar %q at %s", name, client.URL())
	return nil
}
