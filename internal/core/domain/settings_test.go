package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRoutingSettings(t *testing.T) {
	s := DefaultRoutingSettings()

	assert.InDelta(t, 1.0, s.PrecalcMinKm, 1e-9)
	assert.InDelta(t, 12.0, s.PrecalcMaxKm, 1e-9)
	assert.Equal(t, "Home", s.HomeNodeName)
	assert.InDelta(t, 10.0, s.BaseTolerancePercent, 1e-9)
	assert.InDelta(t, 5.0, s.WidenStepPercent, 1e-9)
	assert.InDelta(t, 30.0, s.WidenMaxExtraPercent, 1e-9)
	assert.InDelta(t, 1.0, s.DailyDiversityWeight, 1e-9)
	assert.Equal(t, 180*time.Second, s.SessionTimeout)
	assert.Equal(t, 500, s.CandidateLimit)
	assert.Equal(t, 1000, s.MinLengthM())
	assert.Equal(t, 12000, s.MaxLengthM())
}

func TestRoutingSettings_EffectiveTolerance(t *testing.T) {
	s := DefaultRoutingSettings()

	assert.InDelta(t, 10.0, s.EffectiveTolerance(0), 1e-9)
	assert.InDelta(t, 15.0, s.EffectiveTolerance(1), 1e-9)
	assert.InDelta(t, 40.0, s.EffectiveTolerance(6), 1e-9)
	assert.InDelta(t, 40.0, s.EffectiveTolerance(100), 1e-9)
}

func TestRoutingSettings_EffectiveTolerance_NonDecreasing(t *testing.T) {
	s := RoutingSettings{BaseTolerancePercent: 7, WidenStepPercent: 3, WidenMaxExtraPercent: 10}

	prev := s.EffectiveTolerance(0)
	for steps := 1; steps < 20; steps++ {
		cur := s.EffectiveTolerance(steps)
		assert.GreaterOrEqual(t, cur, prev)
		assert.LessOrEqual(t, cur, 17.0)
		prev = cur
	}
}

func TestRoutingSettings_EffectiveTolerance_NegativeClamped(t *testing.T) {
	s := RoutingSettings{BaseTolerancePercent: 10, WidenStepPercent: -5, WidenMaxExtraPercent: -1}
	assert.InDelta(t, 10.0, s.EffectiveTolerance(3), 1e-9)
}

func TestStorageDriver(t *testing.T) {
	assert.True(t, StorageDriverSQLite.IsValid())
	assert.True(t, StorageDriverMySQL.IsValid())
	assert.False(t, StorageDriver("postgres").IsValid())
	assert.Equal(t, StorageDriverSQLite, DefaultAppSettings().Storage.Driver)
}
