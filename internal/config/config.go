package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config carries the editing service's runtime settings, loaded from the
// environment (with .env support for local runs).
type Config struct {
	Addr           string
	EngineBaseURL  string
	EngineTimeout  time.Duration
	HistoryMaxSize int
	CycleDays      int
	PeriodsPerDay  int
	LogLevel       string
}

func Load() *Config {
	godotenv.Load()
	return &Config{
		Addr:           getEnvString("SCHEDITOR_ADDR", ":8080"),
		EngineBaseURL:  getEnvString("SCHEDITOR_ENGINE_URL", "http://localhost:9090"),
		EngineTimeout:  time.Duration(getEnvInt("SCHEDITOR_ENGINE_TIMEOUT_SECONDS", 30)) * time.Second,
		HistoryMaxSize: getEnvInt("SCHEDITOR_HISTORY_MAX_SIZE", 50),
		CycleDays:      getEnvInt("SCHEDITOR_CYCLE_DAYS", 5),
		PeriodsPerDay:  getEnvInt("SCHEDITOR_PERIODS_PER_DAY", 8),
		LogLevel:       getEnvString("SCHEDITOR_LOG_LEVEL", "info"),
	}
}
