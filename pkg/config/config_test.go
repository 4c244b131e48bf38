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
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Scoring.StatsBackend != BackendMemory {
		t.Errorf("StatsBackend = %q, want memory", cfg.Scoring.StatsBackend)
	}
	if cfg.Server.Port != 8080 || cfg.Redis.CacheTTL != time.Minute {
		t.Errorf("unexpected defaults: %+v %+v", cfg.Server, cfg.Redis)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
scoring:
  statsBackend: postgres
  defaultLimit: 5
  maxResults: 50
  maxTerms: 16
  analyzeTerms: true
redis:
  cacheTTL: 5m
`)
	t.Setenv("CS_SERVER_PORT", "9100")
	t.Setenv("CS_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("CS_SCORING_CACHE_ENABLED", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("env override not applied: port = %d", cfg.Server.Port)
	}
	if cfg.Scoring.StatsBackend != BackendPostgres || cfg.Scoring.MaxTerms != 16 || !cfg.Scoring.AnalyzeTerms {
		t.Errorf("scoring = %+v", cfg.Scoring)
	}
	if !cfg.Scoring.CacheEnabled {
		t.Error("CS_SCORING_CACHE_ENABLED not applied")
	}
	if cfg.Redis.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.Redis.CacheTTL)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Postgres.Database != "cosinescorer" {
		t.Errorf("unset section lost its default: %q", cfg.Postgres.Database)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", "scoring:\n  statsBackend: elastic\n"},
		{"zero limit", "scoring:\n  defaultLimit: 0\n"},
		{"max below default", "scoring:\n  defaultLimit: 20\n  maxResults: 10\n"},
		{"zero terms", "scoring:\n  maxTerms: 0\n"},
		{"kafka without brokers", "scoring:\n  statsBackend: postgres\nkafka:\n  enabled: true\n  brokers: []\n"},
		{"kafka into memory index", "kafka:\n  enabled: true\n"},
		{"bad yaml", "scoring: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestLoadKafkaWithPostgres(t *testing.T) {
	cfg, err := Load(writeConfig(t, "scoring:\n  statsBackend: postgres\nkafka:\n  enabled: true\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Kafka.Enabled {
		t.Error("kafka.enabled not applied")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() succeeded for missing file")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	want := "host=db port=5433 user=u password=p dbname=d sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
