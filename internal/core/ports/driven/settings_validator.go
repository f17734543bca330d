package driven

import "github.com/routy-labs/routy/internal/core/domain"

// SettingsValidator checks settings against their declared constraints.
type SettingsValidator interface {
	// ValidateRouting returns an error wrapping domain.ErrInvalidInput describing every violated constraint.
	ValidateRouting(settings *domain.RoutingSettings) error

	// ValidateStorage returns an error wrapping domain.ErrInvalidInput describing every violated constraint.
	ValidateStorage(settings *domain.StorageSettings) error
}
