package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Payoff.DefaultTermYears != 10 {
		t.Errorf("expected 10 years, got %d", cfg.Payoff.DefaultTermYears)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.TTL != time.Hour {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.KafkaEnabled() {
		t.Errorf("kafka should be disabled by default")
	}
	if cfg.Summary.Timeout >= cfg.Server.WriteTimeout {
		t.Errorf("summary timeout %v must be shorter than write timeout %v", cfg.Summary.Timeout, cfg.Server.WriteTimeout)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PAYOFF_SERVER_PORT", "9090")
	t.Setenv("PAYOFF_PAYOFF_DEFAULT_TERM_YEARS", "15")
	t.Setenv("PAYOFF_CACHE_BACKEND", "redis")
	t.Setenv("PAYOFF_RATELIMIT_REFILL", "30s")
	t.Setenv("PAYOFF_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected 9090, got %d", cfg.Server.Port)
	}
	if cfg.Payoff.DefaultTermYears != 15 {
		t.Errorf("expected 15, got %d", cfg.Payoff.DefaultTermYears)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("expected redis, got %s", cfg.Cache.Backend)
	}
	if cfg.RateLimit.Refill != 30*time.Second {
		t.Errorf("expected 30s, got %v", cfg.RateLimit.Refill)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payoff.yaml")
	content := "server:\n  port: 7070\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7070 || cfg.Log.Level != "debug" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"PAYOFF_CACHE_BACKEND":             "memcached",
		"PAYOFF_SERVER_PORT":               "70000",
		"PAYOFF_PAYOFF_DEFAULT_TERM_YEARS": "0",
		"PAYOFF_SUMMARY_TIMEOUT":           "15s",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(""); err == nil {
				t.Errorf("expected error for %s=%s", key, value)
			}
		})
	}
}
