package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
	"github.com/routy-labs/routy/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyPrecalcMinKm     = "routes.precalc_min_km"
	keyPrecalcMaxKm     = "routes.precalc_max_km"
	keyHomeName         = "home.name"
	keyTolerance        = "routes.tolerance_percent"
	keyWidenStep        = "routes.widen_step_percent"
	keyWidenMax         = "routes.widen_max_percent"
	keyDailyWeight      = "routes.daily_diversity_weight"
	keyCandidateLimit   = "routes.candidate_limit"
	keySessionTimeout   = "session.timeout_seconds"
	keyStorageDriver    = "storage.driver"
	keyMySQLDSN         = "storage.mysql_dsn"
	keySchedulerEnabled = "scheduler.enabled"
	keySweepMinutes     = "scheduler.session_sweep_minutes"
	keyPrecalcEnabled   = "scheduler.precalc_enabled"
	keyPrecalcHours     = "scheduler.precalc_interval_hours"
)

// settingKeys lists every key accepted by Set, in display order.
var settingKeys = []string{
	keyHomeName,
	keyPrecalcMinKm,
	keyPrecalcMaxKm,
	keyTolerance,
	keyWidenStep,
	keyWidenMax,
	keyDailyWeight,
	keyCandidateLimit,
	keySessionTimeout,
	keyStorageDriver,
	keyMySQLDSN,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.SettingsValidator
}

// NewSettingsService creates a new settings service.
// The validator is optional; without it only parse errors are reported.
func NewSettingsService(configStore driven.ConfigStore, validator driven.SettingsValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
	}
}

// Get retrieves current application settings, falling back to defaults for missing keys.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Routing: domain.RoutingSettings{
			PrecalcMinKm:         s.getFloat(keyPrecalcMinKm, d.Routing.PrecalcMinKm),
			PrecalcMaxKm:         s.getFloat(keyPrecalcMaxKm, d.Routing.PrecalcMaxKm),
			HomeNodeName:         s.getString(keyHomeName, d.Routing.HomeNodeName),
			BaseTolerancePercent: s.getFloat(keyTolerance, d.Routing.BaseTolerancePercent),
			WidenStepPercent:     s.getFloat(keyWidenStep, d.Routing.WidenStepPercent),
			WidenMaxExtraPercent: s.getFloat(keyWidenMax, d.Routing.WidenMaxExtraPercent),
			DailyDiversityWeight: s.getFloat(keyDailyWeight, d.Routing.DailyDiversityWeight),
			SessionTimeout: time.Duration(
				s.getInt(keySessionTimeout, int(d.Routing.SessionTimeout/time.Second)),
			) * time.Second,
			CandidateLimit: s.getInt(keyCandidateLimit, d.Routing.CandidateLimit),
		},
		Storage: domain.StorageSettings{
			Driver:   domain.StorageDriver(s.getString(keyStorageDriver, d.Storage.Driver.String())),
			MySQLDSN: s.configStore.GetString(keyMySQLDSN),
		},
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.validate(settings); err != nil {
		return err
	}

	r := settings.Routing
	values := []struct {
		key   string
		value any
	}{
		{keyHomeName, r.HomeNodeName},
		{keyPrecalcMinKm, r.PrecalcMinKm},
		{keyPrecalcMaxKm, r.PrecalcMaxKm},
		{keyTolerance, r.BaseTolerancePercent},
		{keyWidenStep, r.WidenStepPercent},
		{keyWidenMax, r.WidenMaxExtraPercent},
		{keyDailyWeight, r.DailyDiversityWeight},
		{keyCandidateLimit, r.CandidateLimit},
		{keySessionTimeout, int(r.SessionTimeout / time.Second)},
		{keyStorageDriver, settings.Storage.Driver.String()},
		{keyMySQLDSN, settings.Storage.MySQLDSN},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Routing returns validated routing settings.
func (s *SettingsService) Routing() (domain.RoutingSettings, error) {
	settings, err := s.Get()
	if err != nil {
		return domain.RoutingSettings{}, err
	}
	if s.validator != nil {
		if err := s.validator.ValidateRouting(&settings.Routing); err != nil {
			return domain.RoutingSettings{}, err
		}
	}
	return settings.Routing, nil
}

// Set updates a single setting by key. The value is parsed according to the
// key's type and the resulting settings are validated before saving.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	r := &settings.Routing

	switch key {
	case keyHomeName:
		r.HomeNodeName = value
	case keyPrecalcMinKm:
		err = parseFloatInto(value, &r.PrecalcMinKm)
	case keyPrecalcMaxKm:
		err = parseFloatInto(value, &r.PrecalcMaxKm)
	case keyTolerance:
		err = parseFloatInto(value, &r.BaseTolerancePercent)
	case keyWidenStep:
		err = parseFloatInto(value, &r.WidenStepPercent)
	case keyWidenMax:
		err = parseFloatInto(value, &r.WidenMaxExtraPercent)
	case keyDailyWeight:
		err = parseFloatInto(value, &r.DailyDiversityWeight)
	case keyCandidateLimit:
		err = parseIntInto(value, &r.CandidateLimit)
	case keySessionTimeout:
		var secs int
		err = parseIntInto(value, &secs)
		r.SessionTimeout = time.Duration(secs) * time.Second
	case keyStorageDriver:
		settings.Storage.Driver = domain.StorageDriver(value)
	case keyMySQLDSN:
		settings.Storage.MySQLDSN = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	return s.Save(settings)
}

// Reload re-reads the configuration source, picking up external edits.
func (s *SettingsService) Reload() error {
	if err := s.configStore.Load(); err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	return nil
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	return append([]string(nil), settingKeys...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Scheduler returns the scheduler configuration, falling back to defaults.
func (s *SettingsService) Scheduler() domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()
	cfg.Enabled = s.getBool(keySchedulerEnabled, cfg.Enabled)

	cfg.SessionSweep.Every = time.Duration(
		s.getInt(keySweepMinutes, int(cfg.SessionSweep.Every/time.Minute))) * time.Minute
	cfg.RoutePrecalc.Enabled = s.getBool(keyPrecalcEnabled, cfg.RoutePrecalc.Enabled)
	cfg.RoutePrecalc.Every = time.Duration(
		s.getInt(keyPrecalcHours, int(cfg.RoutePrecalc.Every/time.Hour))) * time.Hour

	return cfg
}

// Value returns the current value of a settable key rendered as a string.
func (s *SettingsService) Value(key string) (string, error) {
	settings, err := s.Get()
	if err != nil {
		return "", err
	}
	r := settings.Routing
	switch key {
	case keyHomeName:
		return r.HomeNodeName, nil
	case keyPrecalcMinKm:
		return formatFloat(r.PrecalcMinKm), nil
	case keyPrecalcMaxKm:
		return formatFloat(r.PrecalcMaxKm), nil
	case keyTolerance:
		return formatFloat(r.BaseTolerancePercent), nil
	case keyWidenStep:
		return formatFloat(r.WidenStepPercent), nil
	case keyWidenMax:
		return formatFloat(r.WidenMaxExtraPercent), nil
	case keyDailyWeight:
		return formatFloat(r.DailyDiversityWeight), nil
	case keyCandidateLimit:
		return strconv.Itoa(r.CandidateLimit), nil
	case keySessionTimeout:
		return strconv.Itoa(int(r.SessionTimeout / time.Second)), nil
	case keyStorageDriver:
		return settings.Storage.Driver.String(), nil
	case keyMySQLDSN:
		return settings.Storage.MySQLDSN, nil
	default:
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

func (s *SettingsService) validate(settings *domain.AppSettings) error {
	if s.validator == nil {
		if !settings.Storage.Driver.IsValid() {
			return fmt.Errorf("%w: unknown storage driver %q", domain.ErrInvalidInput, settings.Storage.Driver)
		}
		return nil
	}
	return errors.Join(
		s.validator.ValidateRouting(&settings.Routing),
		s.validator.ValidateStorage(&settings.Storage),
	)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func parseFloatInto(value string, dst *float64) error {
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func parseIntInto(value string, dst *int) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
