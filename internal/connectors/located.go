package connectors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/itinerary"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// OptOutMarker in an event's notes suppresses transit planning for it.
const OptOutMarker = "No location needed"

// DefaultTitle is used for entries without a summary.
const DefaultTitle = "No Title"

// ErrOptedOut indicates the event's notes carry OptOutMarker.
var ErrOptedOut = errors.New("connectors: transit opted out")

// Entry is a calendar entry as read from a provider, before filtering.
type Entry struct {
	ID          string
	Title       string
	Location    string
	Description string
	CalendarID  string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// Locate converts an entry into a LocatedEvent dated in loc.
// It returns domain.ErrAllDayEvent, domain.ErrMissingLocation or ErrOptedOut
// for entries that take no part in planning.
func Locate(e Entry, loc *time.Location) (domain.LocatedEvent, error) {
	if e.ID == "" {
		return domain.LocatedEvent{}, fmt.Errorf("%w: entry without identifier", domain.ErrInvalidInput)
	}
	if e.AllDay {
		return domain.LocatedEvent{}, domain.ErrAllDayEvent
	}
	if e.Start.IsZero() {
		return domain.LocatedEvent{}, fmt.Errorf("%w: entry %s has no start", domain.ErrInvalidInput, e.ID)
	}
	location := itinerary.NormalizeAddress(e.Location)
	if location == "" {
		return domain.LocatedEvent{}, domain.ErrMissingLocation
	}
	if strings.Contains(e.Description, OptOutMarker) {
		return domain.LocatedEvent{}, ErrOptedOut
	}

	end := e.End
	if !end.After(e.Start) {
		end = e.Start.Add(domain.DefaultEventDuration)
	}
	title := e.Title
	if title == "" {
		title = DefaultTitle
	}

	return domain.LocatedEvent{
		ID:         e.ID,
		Title:      title,
		Location:   location,
		Start:      e.Start,
		End:        end,
		Date:       domain.DateOf(e.Start, loc),
		CalendarID: e.CalendarID,
	}, nil
}

// LogSkip records why an entry was left out of planning.
// All-day and unlocated entries are routine and stay silent.
func LogSkip(entry Entry, err error) {
	switch {
	case errors.Is(err, domain.ErrAllDayEvent), errors.Is(err, domain.ErrMissingLocation):
		return
	case errors.Is(err, ErrOptedOut):
		logger.Debug("skipping %q: transit not wanted", entry.Title)
	default:
		logger.Warn("skipping entry %s: %v", entry.ID, err)
	}
}
