package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Address() != "0.0.0.0:8080" {
		t.Fatalf("expected default address, got %s", cfg.Address())
	}
	if cfg.Database.URL != "postgres://salon:pw@localhost:5432/salon?sslmode=disable" {
		t.Fatalf("unexpected database url %s", cfg.Database.URL)
	}
	if cfg.SMTP.Enabled() {
		t.Fatalf("expected smtp disabled without host")
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Fatalf("expected no kafka brokers, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("HUB_HEARTBEAT", "10")
	t.Setenv("NOTIFY_STATUS_EMAILS", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SMTP_HOST", "mail.local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTP.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.HTTP.Port)
	}
	if cfg.Hub.Heartbeat != 10*time.Second {
		t.Fatalf("expected 10s heartbeat, got %s", cfg.Hub.Heartbeat)
	}
	if !cfg.Notify.StatusEmails {
		t.Fatalf("expected status emails enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if !cfg.SMTP.Enabled() {
		t.Fatalf("expected smtp enabled")
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing secret to fail in production")
	}

	t.Setenv("APP_ENV", "development")
	t.Setenv("SERVER_PORT", "http")
	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid port to fail")
	}
}
