package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/transitsync/internal/connectors/google"
	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// client pairs one calendar with the API service and a rate limiter.
type client struct {
	svc     *calendar.Service
	cfg     Config
	limiter *google.RateLimiter
}

func newClient(svc *calendar.Service, cfg Config) *client {
	cfg = cfg.withDefaults()
	return &client{svc: svc, cfg: cfg, limiter: google.NewRateLimiter(cfg.RateLimit)}
}

// listEvents returns the single (expanded) events overlapping [start, end).
func (c *client) listEvents(ctx context.Context, start, end time.Time) ([]*calendar.Event, error) {
	var events []*calendar.Event
	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := c.svc.Events.List(c.cfg.CalendarID).
			SingleEvents(true).
			OrderBy("startTime").
			TimeMin(start.Format(time.RFC3339)).
			TimeMax(end.Format(time.RFC3339)).
			MaxResults(c.cfg.PageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, c.wrap("list events", err)
		}
		for _, ev := range page.Items {
			if ev.Status == "cancelled" {
				continue
			}
			events = append(events, ev)
		}

		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *client) insert(ctx context.Context, ev *calendar.Event) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.svc.Events.Insert(c.cfg.CalendarID, ev).Context(ctx).Do(); err != nil {
		return c.wrap("insert event", err)
	}
	return nil
}

// remove deletes an event. An event that is already gone counts as removed.
func (c *client) remove(ctx context.Context, id string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := c.svc.Events.Delete(c.cfg.CalendarID, id).Context(ctx).Do()
	if err != nil && !google.IsNotFound(err) {
		return c.wrap("delete event "+id, err)
	}
	return nil
}

func (c *client) validate(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	cal, err := c.svc.Calendars.Get(c.cfg.CalendarID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: google calendar %s: %w", domain.ErrConnectorValidation, c.cfg.CalendarID, google.WrapError(err))
	}
	logger.Info("connected to google calendar %q", cal.Summary)
	return nil
}

// wrap classifies err and starts a backoff when the quota was hit.
func (c *client) wrap(op string, err error) error {
	c.limiter.Observe(err)
	return fmt.Errorf("google calendar: %s: %w", op, google.WrapError(err))
}
