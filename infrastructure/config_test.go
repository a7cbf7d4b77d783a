package infrastructure

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOT_TZ", "")
	t.Setenv("DATA_FILE", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("DATE_PICK_DAYS", "")
	t.Setenv("AUTO_DELETE_AFTER_HOURS", "")
	t.Setenv("CLEANUP_INTERVAL_MINUTES", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Token != "123:abc" {
		t.Fatalf("token: %q", cfg.Token)
	}
	if cfg.Timezone != "Europe/Moscow" {
		t.Fatalf("timezone default: %q", cfg.Timezone)
	}
	if cfg.DataFile != "reminders.json" {
		t.Fatalf("data file default: %q", cfg.DataFile)
	}
	if cfg.DatePickDays != 21 {
		t.Fatalf("date pick days default: %d", cfg.DatePickDays)
	}
	if cfg.Retention != 24*time.Hour {
		t.Fatalf("retention default: %v", cfg.Retention)
	}
	if cfg.CleanupInterval != time.Minute {
		t.Fatalf("cleanup interval default: %v", cfg.CleanupInterval)
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without BOT_TOKEN")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("AUTO_DELETE_AFTER_HOURS", "48")
	t.Setenv("CLEANUP_INTERVAL_MINUTES", "5")
	t.Setenv("DATE_PICK_DAYS", "не число")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Retention != 48*time.Hour {
		t.Fatalf("retention override: %v", cfg.Retention)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Fatalf("cleanup interval override: %v", cfg.CleanupInterval)
	}
	// Unparsable numbers fall back to the default.
	if cfg.DatePickDays != 21 {
		t.Fatalf("bad number must fall back to default, got %d", cfg.DatePickDays)
	}
}
