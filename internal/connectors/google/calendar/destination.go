package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// Ensure Destination implements the interface.
var _ driven.CalendarDestination = (*Destination)(nil)

// Destination writes transit events to a dedicated Google calendar.
type Destination struct {
	client *client
}

// NewDestination creates a destination over svc.
func NewDestination(svc *calendar.Service, cfg Config) *Destination {
	return &Destination{client: newClient(svc, cfg)}
}

// CreateTransitEvent inserts seg as a timed event.
func (d *Destination) CreateTransitEvent(ctx context.Context, seg domain.TransitSegment) error {
	if seg.ID == "" {
		return fmt.Errorf("%w: segment without id", domain.ErrInvalidInput)
	}
	if err := d.client.insert(ctx, transitEvent(seg, d.client.cfg.Location)); err != nil {
		return err
	}
	logger.Debug("google calendar: created %q at %s", seg.Title, seg.Start.Format(time.RFC3339))
	return nil
}

// DeleteTransitEvent removes the event inserted for seg.
func (d *Destination) DeleteTransitEvent(ctx context.Context, seg domain.TransitSegment) error {
	if seg.ID == "" {
		return fmt.Errorf("%w: segment without id", domain.ErrInvalidInput)
	}
	return d.client.remove(ctx, eventID(seg.ID))
}

// DeleteTransitEventsForDate removes every timed event starting on date
// except the events of the segments in keep.
// Failures are collected; the count covers the deletions that succeeded.
func (d *Destination) DeleteTransitEventsForDate(ctx context.Context, date string, keep ...string) (int, error) {
	loc := d.client.cfg.Location
	dayStart, dayEnd, err := domain.DayBounds(date, loc)
	if err != nil {
		return 0, err
	}

	items, err := d.client.listEvents(ctx, dayStart, dayEnd)
	if err != nil {
		return 0, err
	}

	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[eventID(id)] = struct{}{}
	}

	var errs []error
	count := 0
	for _, item := range items {
		if _, ok := kept[item.Id]; ok {
			continue
		}
		start, allDay, err := eventTime(item.Start, loc)
		if err != nil || allDay || start.IsZero() {
			continue
		}
		if start.Before(dayStart) || !start.Before(dayEnd) {
			continue
		}
		if err := d.client.remove(ctx, item.Id); err != nil {
			errs = append(errs, err)
			continue
		}
		count++
	}

	logger.Debug("google calendar: deleted %d events on %s", count, date)
	return count, errors.Join(errs...)
}

// Validate checks that the calendar can be written with the stored credentials.
func (d *Destination) Validate(ctx context.Context) error {
	return d.client.validate(ctx)
}
