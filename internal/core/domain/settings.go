package domain

import (
	"errors"
	"fmt"
	"time"
)

// CalendarType identifies the protocol used to reach a calendar.
type CalendarType string

// Supported calendar types.
const (
	CalendarCalDAV CalendarType = "caldav"
	CalendarGoogle CalendarType = "google"
)

// TransitMode selects how the route between two stops is computed.
type TransitMode string

// Supported transit modes.
const (
	ModeTransit TransitMode = "transit"
	ModeDriving TransitMode = "driving"
	ModeWalking TransitMode = "walking"
	ModeCycling TransitMode = "cycling"
)

// Valid reports whether m is a known transit mode.
func (m TransitMode) Valid() bool {
	switch m {
	case ModeTransit, ModeDriving, ModeWalking, ModeCycling:
		return true
	}
	return false
}

// StoreDriver selects the record store backend.
type StoreDriver string

// Supported store drivers.
const (
	StoreSQLite   StoreDriver = "sqlite"
	StorePostgres StoreDriver = "postgres"
	StoreMemory   StoreDriver = "memory"
)

// Defaults applied when a setting is absent from the config file.
const (
	DefaultLookForwardDays    = 28
	DefaultMaxTransit         = 3 * time.Hour
	DefaultRetentionDays      = 7
	DefaultCheckInterval      = 15 * time.Minute
	DefaultDailyUpdateTime    = "01:00"
	DefaultWeeklyCleanup      = "0 2 * * 0"
	DefaultRequestsPerSecond  = 5.0
	DefaultTransitProvider    = "here"
	DefaultHTTPListen         = ""
	DefaultLogLevel           = "info"
	DefaultSQLiteDatabaseName = "transitsync.db"
)

// CalendarSettings locates one calendar.
type CalendarSettings struct {
	Type       CalendarType
	URL        string
	Username   string
	Password   string
	CalendarID string
}

// GoogleSettings holds OAuth client credentials for Google Calendar.
type GoogleSettings struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// TransitSettings configures the transit duration lookup.
type TransitSettings struct {
	Provider          string
	APIKey            string
	Mode              TransitMode
	RequestsPerSecond float64
}

// ScheduleSettings configures the background triggers.
type ScheduleSettings struct {
	CheckInterval   time.Duration
	DailyUpdateTime string
	WeeklyCleanup   string
}

// StoreSettings configures the record store.
type StoreSettings struct {
	Driver StoreDriver
	Path   string
	DSN    string
}

// Settings is the resolved application configuration.
type Settings struct {
	// HomeAddress is the base every day starts and ends at.
	HomeAddress string

	// Timezone is the IANA zone name; Location is its loaded form.
	Timezone string
	Location *time.Location

	// LookForwardDays is the size of the synchronised window starting today.
	LookForwardDays int

	// MaxTransit caps the duration of a generated leg.
	MaxTransit time.Duration

	// RetentionDays is how far back stored rows are kept.
	RetentionDays int

	Source      CalendarSettings
	Destination CalendarSettings
	Google      GoogleSettings
	Transit     TransitSettings
	Schedule    ScheduleSettings
	Store       StoreSettings

	// HTTPListen is the status server address. Empty disables it.
	HTTPListen string

	LogLevel string
	LogFile  string
}

// DefaultSettings returns settings populated with defaults.
func DefaultSettings() Settings {
	return Settings{
		Timezone:        "UTC",
		Location:        time.UTC,
		LookForwardDays: DefaultLookForwardDays,
		MaxTransit:      DefaultMaxTransit,
		RetentionDays:   DefaultRetentionDays,
		Transit: TransitSettings{
			Provider:          DefaultTransitProvider,
			Mode:              ModeTransit,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Schedule: ScheduleSettings{
			CheckInterval:   DefaultCheckInterval,
			DailyUpdateTime: DefaultDailyUpdateTime,
			WeeklyCleanup:   DefaultWeeklyCleanup,
		},
		Store: StoreSettings{
			Driver: StoreSQLite,
		},
		HTTPListen: DefaultHTTPListen,
		LogLevel:   DefaultLogLevel,
	}
}

// Validate checks the settings needed by the sync engine.
// All problems are reported together.
func (s *Settings) Validate() error {
	var errs []error
	if s.HomeAddress == "" {
		errs = append(errs, fmt.Errorf("%w: home_address is required", ErrInvalidInput))
	}
	if s.Location == nil {
		errs = append(errs, fmt.Errorf("%w: timezone is required", ErrInvalidInput))
	}
	if s.LookForwardDays < 1 {
		errs = append(errs, fmt.Errorf("%w: look_forward_days must be positive", ErrInvalidInput))
	}
	if s.MaxTransit <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_transit_hours must be positive", ErrInvalidInput))
	}
	if s.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("%w: retention_days must not be negative", ErrInvalidInput))
	}
	if !s.Transit.Mode.Valid() {
		errs = append(errs, fmt.Errorf("%w: unknown transit.mode %q", ErrInvalidInput, s.Transit.Mode))
	}
	if s.Schedule.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: schedule.check_interval must be positive", ErrInvalidInput))
	}
	if _, err := DailySpec(s.Schedule.DailyUpdateTime); err != nil {
		errs = append(errs, fmt.Errorf("schedule.daily_update_time: %w", err))
	}
	switch s.Store.Driver {
	case StoreSQLite, StoreMemory:
	case StorePostgres:
		if s.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("%w: store.dsn is required for postgres", ErrInvalidInput))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: store.driver %q", ErrUnsupportedType, s.Store.Driver))
	}
	return errors.Join(errs...)
}

// SchedulerConfig derives the cron configuration for the background tasks.
func (s *Settings) SchedulerConfig() (SchedulerConfig, error) {
	cfg := DefaultSchedulerConfig()
	if s.Schedule.CheckInterval > 0 {
		cfg.TaskConfigs[TaskIDCalendarCheck] = TaskConfig{
			Enabled: true,
			Spec:    IntervalSpec(s.Schedule.CheckInterval),
		}
	}
	if s.Schedule.DailyUpdateTime != "" {
		spec, err := DailySpec(s.Schedule.DailyUpdateTime)
		if err != nil {
			return SchedulerConfig{}, err
		}
		cfg.TaskConfigs[TaskIDDailyUpdate] = TaskConfig{Enabled: true, Spec: spec}
	}
	if s.Schedule.WeeklyCleanup != "" {
		cfg.TaskConfigs[TaskIDWeeklyCleanup] = TaskConfig{Enabled: true, Spec: s.Schedule.WeeklyCleanup}
	}
	return cfg, nil
}
