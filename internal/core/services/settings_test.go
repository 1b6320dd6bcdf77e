package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/transitsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/transitsync/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.LookForwardDays, settings.LookForwardDays)
	assert.Equal(t, defaults.MaxTransit, settings.MaxTransit)
	assert.Equal(t, defaults.RetentionDays, settings.RetentionDays)
	assert.Equal(t, domain.ModeTransit, settings.Transit.Mode)
	assert.Equal(t, domain.CalendarCalDAV, settings.Source.Type)
	assert.Equal(t, time.UTC, settings.Location)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyHomeAddress, "1 Home Rd")
	_ = store.Set(KeyTimezone, "America/Chicago")
	_ = store.Set(KeyLookForwardDays, 14)
	_ = store.Set(KeyMaxTransitHours, 1.5)
	_ = store.Set(KeyRetentionDays, 0)
	_ = store.Set(KeySourceType, "google")
	_ = store.Set(KeySourceCalendarID, "primary")
	_ = store.Set(KeyTransitMode, "driving")
	_ = store.Set(KeyTransitRPS, "2.5")
	_ = store.Set(KeyScheduleCheckInterval, "5m")
	_ = store.Set(KeyStoreDriver, "postgres")

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)

	assert.Equal(t, "1 Home Rd", settings.HomeAddress)
	assert.Equal(t, "America/Chicago", settings.Location.String())
	assert.Equal(t, 14, settings.LookForwardDays)
	assert.Equal(t, 90*time.Minute, settings.MaxTransit)
	assert.Zero(t, settings.RetentionDays)
	assert.Equal(t, domain.CalendarGoogle, settings.Source.Type)
	assert.Equal(t, "primary", settings.Source.CalendarID)
	assert.Equal(t, domain.ModeDriving, settings.Transit.Mode)
	assert.InDelta(t, 2.5, settings.Transit.RequestsPerSecond, 0.001)
	assert.Equal(t, 5*time.Minute, settings.Schedule.CheckInterval)
	assert.Equal(t, domain.StorePostgres, settings.Store.Driver)
}

func TestSettingsService_Get_ExpandsEnvironment(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyTransitAPIKey, "${HERE_KEY}")
	_ = store.Set(KeySourcePassword, "pre-$CALDAV_PW")

	service := NewSettingsService(store)
	service.lookupEnv = func(name string) (string, bool) {
		return map[string]string{"HERE_KEY": "secret", "CALDAV_PW": "pw"}[name], true
	}

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "secret", settings.Transit.APIKey)
	assert.Equal(t, "pre-pw", settings.Source.Password)
}

func TestSettingsService_Save_KeepsEnvironmentReferences(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyTransitAPIKey, "${HERE_KEY}")
	_ = store.Set(KeySourcePassword, "${CALDAV_PW}")

	service := NewSettingsService(store)
	service.lookupEnv = func(name string) (string, bool) {
		return map[string]string{"HERE_KEY": "secret", "CALDAV_PW": "pw"}[name], true
	}

	settings, err := service.Get()
	require.NoError(t, err)
	settings.Source.Password = "changed"
	require.NoError(t, service.Save(settings))

	assert.Equal(t, "${HERE_KEY}", store.GetString(KeyTransitAPIKey))
	assert.Equal(t, "changed", store.GetString(KeySourcePassword))
}

func TestSettingsService_Get_InvalidValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyTimezone, "Mars/Olympus")

	_, err := NewSettingsService(store).Get()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	store = memory.NewConfigStore()
	_ = store.Set(KeyScheduleCheckInterval, "often")
	_, err = NewSettingsService(store).Get()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultSettings()
	settings.HomeAddress = "1 Home Rd"
	settings.Timezone = "Europe/London"
	settings.Destination = domain.CalendarSettings{Type: domain.CalendarCalDAV, URL: "https://dav.example.com/transit/"}
	settings.MaxTransit = 2 * time.Hour

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "1 Home Rd", store.GetString(KeyHomeAddress))
	assert.Equal(t, "https://dav.example.com/transit/", store.GetString(KeyDestURL))
	assert.InDelta(t, 2.0, store.GetFloat(KeyMaxTransitHours), 0.001)
	_, exists := store.Get(KeySourceURL)
	assert.False(t, exists, "empty strings are not written")

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", loaded.Location.String())
	assert.Equal(t, 2*time.Hour, loaded.MaxTransit)
}

func TestSettingsService_GetSchedulerConfig(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyScheduleEnabled, false)
	service := NewSettingsService(store)

	settings, err := service.Get()
	require.NoError(t, err)

	cfg, err := service.GetSchedulerConfig(settings)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "0 1 * * *", cfg.GetTaskConfig(domain.TaskIDDailyUpdate).Spec)
}
