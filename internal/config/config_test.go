package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Alert.DangerF != 80.0 || cfg.Alert.CautionOffsetF != 5.0 {
		t.Errorf("unexpected thresholds: %+v", cfg.Alert)
	}
	if cfg.Cooldown() != 60*time.Second {
		t.Errorf("expected 60s cooldown, got %v", cfg.Cooldown())
	}
	if cfg.Alert.MaxPerEvent != 5 || cfg.Query.PageSize != 50 {
		t.Errorf("unexpected limits: max=%d page=%d", cfg.Alert.MaxPerEvent, cfg.Query.PageSize)
	}
	if cfg.API.Port != ":5002" || cfg.API.BasePath != "/api" {
		t.Errorf("unexpected api settings: %+v", cfg.API)
	}
	if cfg.TelephonyEnabled() || cfg.TelegramEnabled() {
		t.Errorf("collaborators should be disabled by default")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "alert:\n  danger_f: 90\n  cooldown_seconds: 30\nquery:\n  page_size: 10\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ALERT_COOLDOWN_SECONDS", "45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Alert.DangerF != 90 {
		t.Errorf("expected danger 90 from file, got %.1f", cfg.Alert.DangerF)
	}
	if cfg.Alert.CooldownSeconds != 45 {
		t.Errorf("expected env cooldown 45, got %d", cfg.Alert.CooldownSeconds)
	}
	if cfg.Query.PageSize != 10 {
		t.Errorf("expected page size 10, got %d", cfg.Query.PageSize)
	}
}

func TestLoadRejectsPartialTelephony(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for partial telephony config")
	}
	if !strings.Contains(err.Error(), "RECIPIENT_PHONE_NUMBER") {
		t.Errorf("expected missing recipient in error, got %v", err)
	}
}

func TestLoadRejectsBadNumber(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ALERT_MAX_PER_EVENT", "five")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
