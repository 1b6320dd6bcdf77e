package calendar

import (
	"fmt"
	"time"

	"github.com/custodia-labs/transitsync/internal/connectors/google"
	"github.com/custodia-labs/transitsync/internal/core/domain"
)

// DefaultPageSize is the page size for event list requests.
const DefaultPageSize int64 = 250

// PrimaryCalendar addresses the account's main calendar.
const PrimaryCalendar = "primary"

// Config holds Google Calendar connector configuration.
type Config struct {
	// CalendarID is the calendar to read or write. Empty means PrimaryCalendar.
	CalendarID string
	// PageSize is the page size for API requests.
	PageSize int64
	// Location resolves dates and all-day entries.
	Location *time.Location
	// RateLimit throttles API calls.
	RateLimit google.RateLimitConfig
}

// ConfigFromSettings builds a connector config for one calendar.
func ConfigFromSettings(cal domain.CalendarSettings, loc *time.Location, rps float64) (Config, error) {
	if cal.Type != domain.CalendarGoogle {
		return Config{}, fmt.Errorf("%w: calendar type %q is not google", domain.ErrUnsupportedType, cal.Type)
	}
	cfg := Config{
		CalendarID: cal.CalendarID,
		Location:   loc,
		RateLimit:  google.RateLimitConfig{RequestsPerSecond: rps, BurstSize: int(rps) + 1},
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.CalendarID == "" {
		c.CalendarID = PrimaryCalendar
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	return c
}
