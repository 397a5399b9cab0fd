package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values come from env (the PaaS injects PORT and DATABASE_URL).
// No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	Storage StorageConfig
	Webhook WebhookConfig
	Redis   RedisConfig
}

type AppConfig struct {
	Env  string
	Port int
}

// StorageConfig selects the audit store backend. When DatabaseURL is
// set the service runs against Postgres; otherwise it falls back to a
// local SQLite file, which is what the free-tier deployment uses.
type StorageConfig struct {
	DatabaseURL string
	SQLitePath  string
}

type WebhookConfig struct {
	// Secret signs inbound webhook bodies (HMAC-SHA256).
	// Empty disables verification entirely.
	Secret string
	// AdminToken protects the read-only /webhook/logs and
	// /webhook/stats endpoints.
	AdminToken string
}

type RedisConfig struct {
	// Addr is optional; empty disables the stats cache.
	Addr          string
	StatsCacheTTL time.Duration
}

// Known-weak fallbacks kept for parity with the original deployment.
// Production should always override both.
const (
	DefaultWebhookSecret = "CorvusSolutions"
	DefaultAdminToken    = "admin123"
)

const (
	defaultPort          = 8080
	defaultSQLitePath    = "webhook_data.db"
	defaultStatsCacheTTL = 30 * time.Second
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

func Load() (Config, error) {
	c := Config{}

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	if c.App.Env == "" {
		c.App.Env = "production"
	}

	port, err := optionalInt("PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	c.App.Port = port

	c.Storage.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	c.Storage.SQLitePath = strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = defaultSQLitePath
	}

	c.Webhook.Secret = os.Getenv("AC_WEBHOOK_SECRET")
	if c.Webhook.Secret == "" {
		c.Webhook.Secret = DefaultWebhookSecret
	}
	c.Webhook.AdminToken = os.Getenv("ADMIN_TOKEN")
	if c.Webhook.AdminToken == "" {
		c.Webhook.AdminToken = DefaultAdminToken
	}

	c.Redis.Addr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	ttl, err := optionalDuration("STATS_CACHE_TTL", defaultStatsCacheTTL)
	if err != nil {
		return Config{}, err
	}
	c.Redis.StatsCacheTTL = ttl

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error

	if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a valid port, got %d", c.App.Port))
	}
	if c.Storage.DatabaseURL == "" && c.Storage.SQLitePath == "" {
		errs = append(errs, errors.New("one of DATABASE_URL or SQLITE_PATH is required"))
	}
	if c.Webhook.AdminToken == "" {
		errs = append(errs, errors.New("ADMIN_TOKEN must not be empty"))
	}
	if c.Redis.StatsCacheTTL <= 0 {
		errs = append(errs, errors.New("STATS_CACHE_TTL must be positive"))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// Backend reports which audit store implementation the config selects.
func (c Config) Backend() string {
	if c.Storage.DatabaseURL != "" {
		return BackendPostgres
	}
	return BackendSQLite
}

// SecretDefaulted reports whether the service is running on the
// built-in webhook secret. The caller logs this as a warning.
func (c Config) SecretDefaulted() bool {
	return c.Webhook.Secret == DefaultWebhookSecret
}

func optionalInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 30s), got %q", key, v)
	}
	return d, nil
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
