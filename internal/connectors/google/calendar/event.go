package calendar

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/transitsync/internal/connectors"
	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/itinerary"
)

// eventToEntry converts a Google Calendar event to a connector entry.
func eventToEntry(ev *calendar.Event, calendarID string, loc *time.Location) (connectors.Entry, error) {
	start, allDay, err := eventTime(ev.Start, loc)
	if err != nil {
		return connectors.Entry{}, fmt.Errorf("event %s start: %w", ev.Id, err)
	}
	end, _, err := eventTime(ev.End, loc)
	if err != nil {
		return connectors.Entry{}, fmt.Errorf("event %s end: %w", ev.Id, err)
	}

	return connectors.Entry{
		ID:          ev.Id,
		Title:       ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		CalendarID:  calendarID,
		Start:       start,
		End:         end,
		AllDay:      allDay,
	}, nil
}

// eventTime reads an EventDateTime. A Date without DateTime marks an all-day entry.
func eventTime(dt *calendar.EventDateTime, loc *time.Location) (time.Time, bool, error) {
	switch {
	case dt == nil:
		return time.Time{}, false, nil
	case dt.DateTime != "":
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return t, false, nil
	case dt.Date != "":
		t, err := time.ParseInLocation(domain.DateLayout, dt.Date, loc)
		if err != nil {
			return time.Time{}, true, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return t, true, nil
	default:
		return time.Time{}, false, nil
	}
}

// transitEvent builds the calendar event written for a segment.
func transitEvent(seg domain.TransitSegment, loc *time.Location) *calendar.Event {
	return &calendar.Event{
		Id:           eventID(seg.ID),
		Summary:      seg.Title,
		Description:  itinerary.DirectionsURL(seg.Origin, seg.Destination),
		Start:        &calendar.EventDateTime{DateTime: seg.Start.In(loc).Format(time.RFC3339), TimeZone: loc.String()},
		End:          &calendar.EventDateTime{DateTime: seg.End.In(loc).Format(time.RFC3339), TimeZone: loc.String()},
		Transparency: "transparent",
	}
}

// eventID maps a segment ID onto Google's event ID alphabet (base32hex,
// 5 to 1024 characters). UUIDs fit once the hyphens are dropped; anything
// else is hex encoded. The mapping is stable so a segment's event can be
// deleted by ID later.
func eventID(id string) string {
	candidate := strings.ToLower(strings.ReplaceAll(id, "-", ""))
	if validEventID(candidate) {
		return candidate
	}
	return "ts" + hex.EncodeToString([]byte(id))
}

func validEventID(id string) bool {
	if len(id) < 5 || len(id) > 1024 {
		return false
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'v') {
			return false
		}
	}
	return true
}
