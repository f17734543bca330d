package validation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routy-labs/routy/internal/core/domain"
)

func TestValidateRouting_Defaults(t *testing.T) {
	v := NewSettingsValidator()
	settings := domain.DefaultRoutingSettings()

	assert.NoError(t, v.ValidateRouting(&settings))
}

func TestValidateRouting_Violations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.RoutingSettings)
		wantMsg string
	}{
		{
			name:    "negative min",
			mutate:  func(s *domain.RoutingSettings) { s.PrecalcMinKm = -1 },
			wantMsg: "routes.precalc_min_km must be at least 0",
		},
		{
			name:    "max not above min",
			mutate:  func(s *domain.RoutingSettings) { s.PrecalcMaxKm = s.PrecalcMinKm },
			wantMsg: "routes.precalc_max_km must be greater than routes.precalc_min_km",
		},
		{
			name:    "max too large",
			mutate:  func(s *domain.RoutingSettings) { s.PrecalcMaxKm = 5000 },
			wantMsg: "routes.precalc_max_km must be at most 1000",
		},
		{
			name:    "missing home",
			mutate:  func(s *domain.RoutingSettings) { s.HomeNodeName = "" },
			wantMsg: "home.name is required",
		},
		{
			name:    "tolerance above 100",
			mutate:  func(s *domain.RoutingSettings) { s.BaseTolerancePercent = 150 },
			wantMsg: "routes.tolerance_percent must be at most 100",
		},
		{
			name:    "non-finite weight",
			mutate:  func(s *domain.RoutingSettings) { s.DailyDiversityWeight = math.Inf(1) },
			wantMsg: "routes.daily_diversity_weight must be a finite number",
		},
		{
			name:    "zero timeout",
			mutate:  func(s *domain.RoutingSettings) { s.SessionTimeout = 0 },
			wantMsg: "session.timeout_seconds must be greater than 0",
		},
		{
			name:    "zero candidate limit",
			mutate:  func(s *domain.RoutingSettings) { s.CandidateLimit = 0 },
			wantMsg: "routes.candidate_limit must be greater than 0",
		},
	}

	v := NewSettingsValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := domain.DefaultRoutingSettings()
			tt.mutate(&settings)

			err := v.ValidateRouting(&settings)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateRouting_NegativeWidenAllowed(t *testing.T) {
	v := NewSettingsValidator()
	settings := domain.DefaultRoutingSettings()
	settings.WidenStepPercent = -5
	settings.WidenMaxExtraPercent = -1
	settings.DailyDiversityWeight = 0

	assert.NoError(t, v.ValidateRouting(&settings))
}

func TestValidateRouting_CollectsAllViolations(t *testing.T) {
	v := NewSettingsValidator()
	settings := domain.RoutingSettings{
		PrecalcMinKm:   1,
		PrecalcMaxKm:   2,
		SessionTimeout: time.Minute,
	}

	err := v.ValidateRouting(&settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "home.name is required")
	assert.Contains(t, err.Error(), "routes.candidate_limit must be greater than 0")
}

func TestValidateStorage(t *testing.T) {
	v := NewSettingsValidator()

	tests := []struct {
		name     string
		settings domain.StorageSettings
		wantMsg  string
	}{
		{name: "sqlite", settings: domain.StorageSettings{Driver: domain.StorageDriverSQLite}},
		{
			name:     "mysql with dsn",
			settings: domain.StorageSettings{Driver: domain.StorageDriverMySQL, MySQLDSN: "mysql://u:p@db:3306/routy"},
		},
		{
			name:     "mysql without dsn",
			settings: domain.StorageSettings{Driver: domain.StorageDriverMySQL},
			wantMsg:  "storage.mysql_dsn is required when storage.driver is mysql",
		},
		{
			name:     "unknown driver",
			settings: domain.StorageSettings{Driver: "postgres"},
			wantMsg:  "storage.driver must be one of: sqlite mysql",
		},
		{
			name:     "empty driver",
			settings: domain.StorageSettings{},
			wantMsg:  "storage.driver is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStorage(&tt.settings)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
