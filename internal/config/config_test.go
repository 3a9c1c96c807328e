package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, databasePathEnv, sourceChannelEnv, brandEnv,
		telegramTokenEnv, telegramTargetEnv, generationKeyEnv,
		generationModelEnv, serverAddrEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.Database.Path != "data.db" {
		t.Fatalf("unexpected default database path %q", cfg.Database.Path)
	}
	if cfg.Server.Addr != ":8787" {
		t.Fatalf("unexpected default server addr %q", cfg.Server.Addr)
	}
	if cfg.Delivery.Brand != "Changal 24" {
		t.Fatalf("unexpected default brand %q", cfg.Delivery.Brand)
	}
	if cfg.Generation.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected default model %q", cfg.Generation.Model)
	}
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("unexpected default timezone %q", cfg.Scheduler.Location())
	}
}

func TestLoadFileMergeAndEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
database:
  path: /var/lib/changal/file.db
delivery:
  brand: File Brand
scheduler:
  intakeCron: "*/5 * * * *"
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(databasePathEnv, "/tmp/env.db")
	t.Setenv(telegramTargetEnv, "@envchannel")

	cfg := Load()
	// Environment beats the file; the file beats defaults.
	if cfg.Database.Path != "/tmp/env.db" {
		t.Fatalf("env override lost: %q", cfg.Database.Path)
	}
	if cfg.Delivery.Brand != "File Brand" {
		t.Fatalf("file value lost: %q", cfg.Delivery.Brand)
	}
	if cfg.Scheduler.IntakeCron != "*/5 * * * *" {
		t.Fatalf("file value lost: %q", cfg.Scheduler.IntakeCron)
	}
	if cfg.Delivery.Target != "@envchannel" {
		t.Fatalf("env value lost: %q", cfg.Delivery.Target)
	}
	// Untouched keys keep their defaults.
	if cfg.Scheduler.PublishCron != "0 * * * *" {
		t.Fatalf("default lost: %q", cfg.Scheduler.PublishCron)
	}
}

func TestLoadToleratesBrokenFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{broken: [yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Database.Path != "data.db" {
		t.Fatalf("broken file must fall back to defaults, got %q", cfg.Database.Path)
	}
}

func TestBindTimezoneFallsBackToUTC(t *testing.T) {
	clearEnv(t)

	cfg := defaultConfig()
	cfg.Scheduler.Timezone = "Not/AZone"
	cfg.bindTimezone()
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("unknown timezone must fall back to UTC, got %q", cfg.Scheduler.Location())
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg := defaultConfig()
	if err := cfg.ValidateIntake(); err == nil {
		t.Fatal("intake without a source channel must fail validation")
	}
	if err := cfg.ValidatePublish(); err == nil {
		t.Fatal("publish without a target must fail validation")
	}

	cfg.Source.ChannelURL = "https://t.me/s/ainews"
	cfg.Delivery.Target = "@channel"
	if err := cfg.ValidateIntake(); err != nil {
		t.Fatalf("intake validation: %v", err)
	}
	if err := cfg.ValidatePublish(); err != nil {
		t.Fatalf("publish validation: %v", err)
	}
}
