package config

import (
	"testing"
	"time"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("AC_WEBHOOK_SECRET", "")
	t.Setenv("ADMIN_TOKEN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("STATS_CACHE_TTL", "")

	c, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.App.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", c.App.Port)
	}
	if c.Backend() != BackendSQLite {
		t.Fatalf("expected sqlite backend without DATABASE_URL, got %q", c.Backend())
	}
	if c.Storage.SQLitePath != "webhook_data.db" {
		t.Fatalf("unexpected sqlite path %q", c.Storage.SQLitePath)
	}
	if !c.SecretDefaulted() {
		t.Fatalf("expected defaulted webhook secret")
	}
	if c.Webhook.AdminToken != DefaultAdminToken {
		t.Fatalf("expected default admin token")
	}
	if c.Redis.StatsCacheTTL != 30*time.Second {
		t.Fatalf("unexpected cache ttl %v", c.Redis.StatsCacheTTL)
	}
}

func TestLoad_RejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric PORT")
	}

	t.Setenv("PORT", "70000")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for out-of-range PORT")
	}
}

func TestBackend_SelectsPostgresWhenURLSet(t *testing.T) {
	c := Config{Storage: StorageConfig{DatabaseURL: "postgres://u:p@localhost:5432/webhooks"}}
	if c.Backend() != BackendPostgres {
		t.Fatalf("expected postgres backend, got %q", c.Backend())
	}
}

func TestValidate_RejectsUnknownEnv(t *testing.T) {
	c := Config{
		App:     AppConfig{Env: "qa", Port: 8080},
		Storage: StorageConfig{SQLitePath: "webhook_data.db"},
		Webhook: WebhookConfig{AdminToken: "t"},
		Redis:   RedisConfig{StatsCacheTTL: time.Second},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown APP_ENV")
	}
}
