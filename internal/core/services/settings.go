package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/core/ports/driving"
)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyHomeAddress     = "home_address"
	KeyTimezone        = "timezone"
	KeyLookForwardDays = "look_forward_days"
	KeyMaxTransitHours = "max_transit_hours"
	KeyRetentionDays   = "retention_days"

	KeySourceType       = "source.type"
	KeySourceURL        = "source.url"
	KeySourceUsername   = "source.username"
	KeySourcePassword   = "source.password"
	KeySourceCalendarID = "source.calendar_id"

	KeyDestType       = "destination.type"
	KeyDestURL        = "destination.url"
	KeyDestUsername   = "destination.username"
	KeyDestPassword   = "destination.password"
	KeyDestCalendarID = "destination.calendar_id"

	KeyGoogleClientID     = "google.client_id"
	KeyGoogleClientSecret = "google.client_secret"
	KeyGoogleRefreshToken = "google.refresh_token"

	KeyTransitProvider = "transit.provider"
	KeyTransitAPIKey   = "transit.api_key"
	KeyTransitMode     = "transit.mode"
	KeyTransitRPS      = "transit.requests_per_second"

	KeyScheduleEnabled       = "schedule.enabled"
	KeyScheduleCheckInterval = "schedule.check_interval"
	KeyScheduleDailyTime     = "schedule.daily_update_time"
	KeyScheduleWeekly        = "schedule.weekly_cleanup"

	KeyStoreDriver = "store.driver"
	KeyStorePath   = "store.path"
	KeyStoreDSN    = "store.dsn"

	KeyHTTPListen = "http.listen"

	KeyLogLevel = "log.level"
	KeyLogFile  = "log.file"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService reads and writes application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get resolves the current settings, applying defaults for missing keys
// and expanding ${VAR} references in string values. The result is not
// validated; call Validate on it before starting the engine.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()

	settings.HomeAddress = s.getString(KeyHomeAddress, "")
	settings.Timezone = s.getString(KeyTimezone, settings.Timezone)
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", domain.ErrInvalidInput, settings.Timezone, err)
	}
	settings.Location = loc

	settings.LookForwardDays = s.getInt(KeyLookForwardDays, settings.LookForwardDays)
	if hours := s.getFloat(KeyMaxTransitHours, 0); hours != 0 {
		settings.MaxTransit = time.Duration(hours * float64(time.Hour))
	}
	if _, exists := s.configStore.Get(KeyRetentionDays); exists {
		settings.RetentionDays = s.configStore.GetInt(KeyRetentionDays)
	}

	settings.Source = s.calendar("source")
	settings.Destination = s.calendar("destination")
	settings.Google = domain.GoogleSettings{
		ClientID:     s.getString(KeyGoogleClientID, ""),
		ClientSecret: s.getString(KeyGoogleClientSecret, ""),
		RefreshToken: s.getString(KeyGoogleRefreshToken, ""),
	}

	settings.Transit.Provider = s.getString(KeyTransitProvider, settings.Transit.Provider)
	settings.Transit.APIKey = s.getString(KeyTransitAPIKey, "")
	settings.Transit.Mode = domain.TransitMode(s.getString(KeyTransitMode, string(settings.Transit.Mode)))
	settings.Transit.RequestsPerSecond = s.getFloat(KeyTransitRPS, settings.Transit.RequestsPerSecond)

	if interval := s.getString(KeyScheduleCheckInterval, ""); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %v", domain.ErrInvalidInput, KeyScheduleCheckInterval, interval, err)
		}
		settings.Schedule.CheckInterval = d
	}
	settings.Schedule.DailyUpdateTime = s.getString(KeyScheduleDailyTime, settings.Schedule.DailyUpdateTime)
	settings.Schedule.WeeklyCleanup = s.getString(KeyScheduleWeekly, settings.Schedule.WeeklyCleanup)

	settings.Store = domain.StoreSettings{
		Driver: domain.StoreDriver(s.getString(KeyStoreDriver, string(settings.Store.Driver))),
		Path:   s.getString(KeyStorePath, ""),
		DSN:    s.getString(KeyStoreDSN, ""),
	}
	settings.HTTPListen = s.getString(KeyHTTPListen, settings.HTTPListen)
	settings.LogLevel = s.getString(KeyLogLevel, settings.LogLevel)
	settings.LogFile = s.getString(KeyLogFile, "")

	return &settings, nil
}

// Save writes settings back to the config store and persists them.
// A stored "${VAR}" reference that still resolves to the value being saved
// is left in place, so secrets read from the environment are not written out.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyHomeAddress, settings.HomeAddress},
		{KeyTimezone, settings.Timezone},
		{KeyLookForwardDays, settings.LookForwardDays},
		{KeyMaxTransitHours, settings.MaxTransit.Hours()},
		{KeyRetentionDays, settings.RetentionDays},
		{KeySourceType, string(settings.Source.Type)},
		{KeySourceURL, settings.Source.URL},
		{KeySourceUsername, settings.Source.Username},
		{KeySourcePassword, settings.Source.Password},
		{KeySourceCalendarID, settings.Source.CalendarID},
		{KeyDestType, string(settings.Destination.Type)},
		{KeyDestURL, settings.Destination.URL},
		{KeyDestUsername, settings.Destination.Username},
		{KeyDestPassword, settings.Destination.Password},
		{KeyDestCalendarID, settings.Destination.CalendarID},
		{KeyGoogleClientID, settings.Google.ClientID},
		{KeyGoogleClientSecret, settings.Google.ClientSecret},
		{KeyGoogleRefreshToken, settings.Google.RefreshToken},
		{KeyTransitProvider, settings.Transit.Provider},
		{KeyTransitAPIKey, settings.Transit.APIKey},
		{KeyTransitMode, string(settings.Transit.Mode)},
		{KeyTransitRPS, settings.Transit.RequestsPerSecond},
		{KeyScheduleCheckInterval, settings.Schedule.CheckInterval.String()},
		{KeyScheduleDailyTime, settings.Schedule.DailyUpdateTime},
		{KeyScheduleWeekly, settings.Schedule.WeeklyCleanup},
		{KeyStoreDriver, string(settings.Store.Driver)},
		{KeyStorePath, settings.Store.Path},
		{KeyStoreDSN, settings.Store.DSN},
		{KeyHTTPListen, settings.HTTPListen},
		{KeyLogLevel, settings.LogLevel},
		{KeyLogFile, settings.LogFile},
	}

	for _, v := range values {
		if str, ok := v.value.(string); ok {
			if str == "" {
				continue
			}
			if raw := s.configStore.GetString(v.key); raw != str && s.expand(raw) == str {
				continue
			}
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("set %s: %w", v.key, err)
		}
	}
	return s.configStore.Save()
}

// GetSchedulerConfig returns the scheduler configuration for settings.
// The master switch is read from schedule.enabled.
func (s *SettingsService) GetSchedulerConfig(settings *domain.Settings) (domain.SchedulerConfig, error) {
	cfg, err := settings.SchedulerConfig()
	if err != nil {
		return domain.SchedulerConfig{}, err
	}
	if _, exists := s.configStore.Get(KeyScheduleEnabled); exists {
		cfg.Enabled = s.configStore.GetBool(KeyScheduleEnabled)
	}
	return cfg, nil
}

// Reload re-reads the config file and resolves the settings again.
func (s *SettingsService) Reload() (*domain.Settings, error) {
	if err := s.configStore.Load(); err != nil {
		return nil, fmt.Errorf("reload %s: %w", s.configStore.Path(), err)
	}
	return s.Get()
}

// Path returns the config file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) calendar(prefix string) domain.CalendarSettings {
	return domain.CalendarSettings{
		Type:       domain.CalendarType(s.getString(prefix+".type", string(domain.CalendarCalDAV))),
		URL:        s.getString(prefix+".url", ""),
		Username:   s.getString(prefix+".username", ""),
		Password:   s.getString(prefix+".password", ""),
		CalendarID: s.getString(prefix+".calendar_id", ""),
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return s.expand(val)
}

func (s *SettingsService) expand(val string) string {
	return os.Expand(val, func(name string) string {
		v, _ := s.lookupEnv(name)
		return v
	})
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if val := s.configStore.GetFloat(key); val != 0 {
		return val
	}
	// Values written by hand may be quoted.
	if str := s.configStore.GetString(key); str != "" {
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
