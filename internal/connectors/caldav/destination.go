package caldav

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// Ensure Destination implements the interface.
var _ driven.CalendarDestination = (*Destination)(nil)

// Destination writes transit events to a dedicated CalDAV collection.
// Clearing a date removes every timed event starting on it.
type Destination struct {
	client *Client
	loc    *time.Location
	now    func() time.Time
}

// NewDestination creates a destination over client. Dates are days in loc.
func NewDestination(client *Client, loc *time.Location) *Destination {
	if loc == nil {
		loc = time.Local
	}
	return &Destination{client: client, loc: loc, now: time.Now}
}

// CreateTransitEvent stores seg as <id>.ics.
func (d *Destination) CreateTransitEvent(ctx context.Context, seg domain.TransitSegment) error {
	if seg.ID == "" {
		return fmt.Errorf("%w: segment without id", domain.ErrInvalidInput)
	}
	if err := d.client.Put(ctx, seg.ID+".ics", buildTransitEvent(seg, d.now())); err != nil {
		return err
	}
	logger.Debug("caldav: created %q at %s", seg.Title, seg.Start.Format(time.RFC3339))
	return nil
}

// DeleteTransitEvent removes <id>.ics.
func (d *Destination) DeleteTransitEvent(ctx context.Context, seg domain.TransitSegment) error {
	if seg.ID == "" {
		return fmt.Errorf("%w: segment without id", domain.ErrInvalidInput)
	}
	return d.client.Delete(ctx, seg.ID+".ics")
}

// DeleteTransitEventsForDate removes the resources holding a timed event
// that starts on date, skipping the resources of the segments in keep.
// Individual failures are collected; the count covers the deletions that
// succeeded.
func (d *Destination) DeleteTransitEventsForDate(ctx context.Context, date string, keep ...string) (int, error) {
	dayStart, dayEnd, err := domain.DayBounds(date, d.loc)
	if err != nil {
		return 0, err
	}

	objects, err := d.client.Query(ctx, dayStart, dayEnd)
	if err != nil {
		return 0, err
	}

	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id+".ics"] = struct{}{}
	}

	var errs []error
	count := 0
	for _, obj := range objects {
		if _, ok := kept[path.Base(strings.TrimSuffix(obj.Href, "/"))]; ok {
			continue
		}
		if !startsWithin(obj, dayStart, dayEnd, d.loc) {
			continue
		}
		if err := d.client.Delete(ctx, obj.Href); err != nil {
			errs = append(errs, err)
			continue
		}
		count++
	}

	logger.Debug("caldav: deleted %d events on %s", count, date)
	return count, errors.Join(errs...)
}

// Validate checks that the collection answers PROPFIND.
func (d *Destination) Validate(ctx context.Context) error {
	return validate(ctx, d.client)
}

func startsWithin(obj Object, from, to time.Time, loc *time.Location) bool {
	entries, err := parseEntries(obj.Data, "", loc)
	if err != nil {
		logger.Warn("caldav: cannot read %s: %v", obj.Href, err)
		return false
	}
	for _, e := range entries {
		if e.AllDay {
			continue
		}
		if !e.Start.Before(from) && e.Start.Before(to) {
			return true
		}
	}
	return false
}
