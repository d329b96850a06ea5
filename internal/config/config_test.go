package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glicks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
seasons:
  current: "2026"
  available: ["2025", "2024"]
  time_zone: "America/Chicago"
source:
  kind: rest
  rest:
    url: "https://example.supabase.co"
    anon_key: "anon"
    timeout: 5s
    max_retries: 2
storage:
  data_dir: "/tmp/glicks/data"
  sqlite_path: "/tmp/glicks/glicks.db"
server:
  host: "0.0.0.0"
  port: 9000
  grpc_port: 9001
cache:
  redis_url: "redis://localhost:6379/0"
  picks_ttl: 30s
logging:
  level: "debug"
  format: "text"
`)

	// Clear any environment overrides that might interfere.
	for _, k := range []string{"GLICKS_SOURCE", "SUPABASE_URL", "SUPABASE_ANON_KEY", "DATA_DIR", "LOG_LEVEL", "PORT", "REDIS_URL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Seasons --
	if cfg.Seasons.Current != "2026" {
		t.Errorf("Seasons.Current = %q, want %q", cfg.Seasons.Current, "2026")
	}
	if len(cfg.Seasons.Available) != 2 || cfg.Seasons.Available[1] != "2024" {
		t.Errorf("Seasons.Available = %v, want [2025 2024]", cfg.Seasons.Available)
	}
	if cfg.Seasons.TimeZone != "America/Chicago" {
		t.Errorf("Seasons.TimeZone = %q, want %q", cfg.Seasons.TimeZone, "America/Chicago")
	}

	// -- Source --
	if cfg.Source.Kind != "rest" {
		t.Errorf("Source.Kind = %q, want %q", cfg.Source.Kind, "rest")
	}
	if cfg.Source.REST.URL != "https://example.supabase.co" {
		t.Errorf("Source.REST.URL = %q", cfg.Source.REST.URL)
	}
	if cfg.Source.REST.Timeout != 5*time.Second {
		t.Errorf("Source.REST.Timeout = %v, want 5s", cfg.Source.REST.Timeout)
	}
	if cfg.Source.REST.MaxRetries != 2 {
		t.Errorf("Source.REST.MaxRetries = %d, want 2", cfg.Source.REST.MaxRetries)
	}
	if cfg.Source.REST.RateLimitPerMin != 120 {
		t.Errorf("Source.REST.RateLimitPerMin = %d, want default 120", cfg.Source.REST.RateLimitPerMin)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/glicks/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/glicks/data")
	}
	if cfg.Storage.SQLitePath != "/tmp/glicks/glicks.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/glicks/glicks.db")
	}

	// -- Server --
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Server.GRPCPort != 9001 {
		t.Errorf("Server.GRPCPort = %d, want 9001", cfg.Server.GRPCPort)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("Server.CORSOrigins = %v, want [*]", cfg.Server.CORSOrigins)
	}

	// -- Cache --
	if cfg.Cache.PicksTTL != 30*time.Second {
		t.Errorf("Cache.PicksTTL = %v, want 30s", cfg.Cache.PicksTTL)
	}
	if cfg.Cache.ResultsTTL != 10*time.Minute {
		t.Errorf("Cache.ResultsTTL = %v, want 10m", cfg.Cache.ResultsTTL)
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
source:
  kind: static
logging:
  level: info
`)

	t.Setenv("GLICKS_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/picks")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PORT", "7777")
	t.Setenv("GLICKS_SEASONS", "2025, 2023")
	t.Setenv("GLICKS_SPLIT_DOUBLEHEADERS", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Source.Kind != "postgres" {
		t.Errorf("Source.Kind = %q, want %q", cfg.Source.Kind, "postgres")
	}
	if cfg.Source.Postgres.DSN != "postgres://u:p@localhost/picks" {
		t.Errorf("Source.Postgres.DSN = %q", cfg.Source.Postgres.DSN)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777", cfg.Server.Port)
	}
	if len(cfg.Seasons.Available) != 2 || cfg.Seasons.Available[1] != "2023" {
		t.Errorf("Seasons.Available = %v, want [2025 2023]", cfg.Seasons.Available)
	}
	if !cfg.Display.SplitDoubleheaders {
		t.Error("Display.SplitDoubleheaders = false, want true")
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("TEST_GLICKS_URL", "https://expanded.example")
	path := writeConfig(t, `
source:
  rest:
    url: "${TEST_GLICKS_URL}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Source.REST.URL != "https://expanded.example" {
		t.Errorf("Source.REST.URL = %q, want expanded value", cfg.Source.REST.URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() on missing file should return error")
	}
}

func TestAllSeasons(t *testing.T) {
	cfg := &Config{Seasons: Seasons{Current: "2026", Available: []string{"2026", "2025", "", "2024"}}}
	got := cfg.AllSeasons()
	want := []string{"2026", "2025", "2024"}
	if len(got) != len(want) {
		t.Fatalf("AllSeasons() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllSeasons()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !cfg.HasSeason("2025") {
		t.Error("HasSeason(2025) = false, want true")
	}
	if cfg.HasSeason("2019") {
		t.Error("HasSeason(2019) = true, want false")
	}
}
