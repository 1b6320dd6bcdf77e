package driving

import "github.com/custodia-labs/transitsync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves the current settings with defaults applied.
	Get() (*domain.Settings, error)

	// Reload re-reads the underlying storage, then resolves settings like Get.
	Reload() (*domain.Settings, error)

	// Save persists application settings.
	Save(settings *domain.Settings) error

	// GetSchedulerConfig derives the scheduler configuration from settings.
	GetSchedulerConfig(settings *domain.Settings) (domain.SchedulerConfig, error)

	// Path returns where the settings are stored.
	Path() string
}
