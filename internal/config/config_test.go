package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "storage_path: memory\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.StoragePath != StorageMemory {
		t.Fatalf("storage_path = %q", cfg.StoragePath)
	}
	if cfg.Store.Timeout != 3*time.Second {
		t.Fatalf("store.timeout = %s, want 3s", cfg.Store.Timeout)
	}
	if cfg.Booking.RejectPastDates || cfg.Store.SkipMigrate {
		t.Fatalf("boolean switches should default to false: %+v %+v", cfg.Booking, cfg.Store)
	}
	if cfg.Redis.LockTTL != 10*time.Second || cfg.Kafka.Topic != "appointment-events" {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Redis, cfg.Kafka)
	}
	if cfg.HTTPServer.ShutdownTimeout != 15*time.Second {
		t.Fatalf("shutdown_timeout = %s", cfg.HTTPServer.ShutdownTimeout)
	}
}

func TestLoad_FileValuesAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
storage_path: "postgres://localhost/appointments"
store:
  timeout: 750ms
  skip_migrate: true
booking:
  reject_past_dates: true
rate_limit:
  rps: 5
  burst: 10
`)
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Store.Timeout != 750*time.Millisecond || !cfg.Store.SkipMigrate || !cfg.Booking.RejectPastDates {
		t.Fatalf("file values not applied: %+v %+v", cfg.Store, cfg.Booking)
	}
	if cfg.RateLimit.RPS != 5 || cfg.RateLimit.Burst != 10 {
		t.Fatalf("rate limit = %+v", cfg.RateLimit)
	}
	if cfg.Kafka.Brokers != "k1:9092,k2:9092" {
		t.Fatalf("env override ignored: %q", cfg.Kafka.Brokers)
	}
}

func TestLoad_ShippedFiles(t *testing.T) {
	prod, err := Load(filepath.Join("..", "..", "config", "prod.yaml"))
	if err != nil {
		t.Fatalf("Load prod: %v", err)
	}
	if !prod.Booking.RejectPastDates {
		t.Fatalf("prod must reject past dates")
	}
	if prod.Store.SkipMigrate || prod.SeedPath != "" {
		t.Fatalf("prod should migrate and not seed: %+v seed=%q", prod.Store, prod.SeedPath)
	}

	local, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	if err != nil {
		t.Fatalf("Load local: %v", err)
	}
	if local.StoragePath != StorageMemory || local.SeedPath == "" {
		t.Fatalf("local should run on a seeded memory store: %q seed=%q", local.StoragePath, local.SeedPath)
	}
	if local.Booking.RejectPastDates {
		t.Fatalf("local accepts past dates")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
