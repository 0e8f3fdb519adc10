package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	// Act
	cfg := Load()

	// Assert
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 50, cfg.HistoryMaxSize)
	assert.Equal(t, 5, cfg.CycleDays)
	assert.Equal(t, 8, cfg.PeriodsPerDay)
	assert.Equal(t, 30*time.Second, cfg.EngineTimeout)
}

func TestLoadReadsEnvironment(t *testing.T) {
	// Arrange
	t.Setenv("SCHEDITOR_ADDR", ":9999")
	t.Setenv("SCHEDITOR_CYCLE_DAYS", "6")
	t.Setenv("SCHEDITOR_ENGINE_TIMEOUT_SECONDS", "5")

	// Act
	cfg := Load()

	// Assert
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 6, cfg.CycleDays)
	assert.Equal(t, 5*time.Second, cfg.EngineTimeout)
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	// Arrange
	t.Setenv("SCHEDITOR_HISTORY_MAX_SIZE", "many")

	// Act
	cfg := Load()

	// Assert
	assert.Equal(t, 50, cfg.HistoryMaxSize)
}
