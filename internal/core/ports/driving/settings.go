package driving

import "github.com/routy-labs/routy/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save validates and persists application settings.
	Save(settings *domain.AppSettings) error

	// Routing returns validated routing settings.
	Routing() (domain.RoutingSettings, error)

	// Set updates a single setting by key, validating the result before saving.
	Set(key, value string) error

	// Reload re-reads the configuration source.
	Reload() error

	// Keys returns every settable key in display order.
	Keys() []string

	// Value returns the current value of a settable key.
	Value(key string) (string, error)

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Scheduler returns the background task configuration.
	Scheduler() domain.SchedulerConfig
}
