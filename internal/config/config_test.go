package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_FileValuesAndDefaults(t *testing.T) {
	p := writeConfig(t, `
port: "9090"
admin_user_id: "auth0|admin"
cron:
  secret: "s3cret"
scheduler:
  confirmation_delay: 500ms
  default_fan: 4
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.AdminUserID != "auth0|admin" || cfg.Cron.Secret != "s3cret" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Scheduler.ConfirmationDelay != 500*time.Millisecond {
		t.Fatalf("confirmation_delay: got %v", cfg.Scheduler.ConfirmationDelay)
	}
	if cfg.Scheduler.DefaultFan != 4 || cfg.Scheduler.DefaultPower != 2 {
		t.Fatalf("levels: fan=%d power=%d", cfg.Scheduler.DefaultFan, cfg.Scheduler.DefaultPower)
	}
	if cfg.Scheduler.TokenMaxAge != 60*24*time.Hour || cfg.Scheduler.ConfirmationRetries != 1 {
		t.Fatalf("defaults not applied: %+v", cfg.Scheduler)
	}
	if cfg.DB.Driver != DriverSQLite || cfg.Timezone != "Europe/Rome" {
		t.Fatalf("defaults not applied: db=%q tz=%q", cfg.DB.Driver, cfg.Timezone)
	}
	if cfg.LogFormat != "console" {
		t.Fatalf("log_format default: %q", cfg.LogFormat)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := writeConfig(t, "cron:\n  secret: from-file\n")
	t.Setenv("CRON_SECRET", "from-env")
	t.Setenv("SCHEDULER_DEFAULT_POWER", "3")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cron.Secret != "from-env" {
		t.Fatalf("expected env secret, got %q", cfg.Cron.Secret)
	}
	if cfg.Scheduler.DefaultPower != 3 {
		t.Fatalf("expected env power 3, got %d", cfg.Scheduler.DefaultPower)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]string{
		"unknown driver":       "db:\n  driver: mysql\n",
		"postgres without url": "db:\n  driver: postgres\n",
		"bad timezone":         "timezone: Mars/Olympus\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestOptionalCollaborators(t *testing.T) {
	t.Parallel()

	if (ThermostatConfig{}).Enabled() {
		t.Fatalf("empty thermostat config should be disabled")
	}
	if !(ThermostatConfig{BaseURL: "http://x", RefreshToken: "r", HomeID: "h"}).Enabled() {
		t.Fatalf("thermostat should be enabled")
	}
	if (WeatherConfig{BaseURL: "http://x"}).Enabled() {
		t.Fatalf("weather without coordinates should be disabled")
	}
}
