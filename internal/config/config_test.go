package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RESYNC_INTERVAL_HOURS", "")
	t.Setenv("SUMMARY_TIME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "schedule_bot.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.ResyncInterval != 6*time.Hour {
		t.Errorf("ResyncInterval = %v", cfg.ResyncInterval)
	}
	if cfg.SummaryTime != "07:00" {
		t.Errorf("SummaryTime = %q", cfg.SummaryTime)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without TELEGRAM_TOKEN")
	}
}

func TestParseInterval(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 0},
		{"4", 4 * time.Hour},
		{"0", 0},
		{"-2", 0},
		{"abc", 0},
	}
	for _, tc := range cases {
		if got := parseInterval(tc.raw); got != tc.want {
			t.Errorf("parseInterval(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
