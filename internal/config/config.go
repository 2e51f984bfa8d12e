package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	ResyncInterval time.Duration // full reminder rearm safety net
	SummaryTime    string        // "HH:MM" for the morning summary
}

// Load reads configuration from the environment (and .env, when present)
// with sane defaults.
func Load() (Config, error) {
	// Missing .env is fine, real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ResyncInterval: parseInterval(strings.TrimSpace(os.Getenv("RESYNC_INTERVAL_HOURS"))),
		SummaryTime:    strings.TrimSpace(os.Getenv("SUMMARY_TIME")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "schedule_bot.db"
	}

	if cfg.ResyncInterval == 0 {
		cfg.ResyncInterval = 6 * time.Hour
	}

	if cfg.SummaryTime == "" {
		cfg.SummaryTime = "07:00"
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
