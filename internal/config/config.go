package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port string

	// Telegram
	TelegramBotToken string
	AdminUsername    string

	// FPL API
	FPLBaseURL        string
	FPLTimeoutSeconds int
	FPLCacheMinutes   int

	// Scheduler
	ResultsIntervalMinutes  int
	ReminderIntervalMinutes int
	RolloverIntervalHours   int
	KeepAliveMinutes        int

	// Picks
	MatchConfidenceFloor int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/laststanding?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port: getEnv("PORT", "8080"),

		// Telegram
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		AdminUsername:    getEnv("ADMIN_USERNAME", ""),

		// FPL API
		FPLBaseURL:        getEnv("FPL_BASE_URL", "https://fantasy.premierleague.com/api"),
		FPLTimeoutSeconds: getEnvInt("FPL_TIMEOUT_SECONDS", 10),
		FPLCacheMinutes:   getEnvInt("FPL_CACHE_MINUTES", 10),

		// Scheduler
		ResultsIntervalMinutes:  getEnvInt("RESULTS_INTERVAL_MINUTES", 60),
		ReminderIntervalMinutes: getEnvInt("REMINDER_INTERVAL_MINUTES", 60),
		RolloverIntervalHours:   getEnvInt("ROLLOVER_INTERVAL_HOURS", 24),
		KeepAliveMinutes:        getEnvInt("KEEP_ALIVE_MINUTES", 5),

		// Picks
		MatchConfidenceFloor: getEnvInt("MATCH_CONFIDENCE_FLOOR", 90),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
