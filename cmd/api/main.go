package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campaign-webhooks/internal/cache"
	"campaign-webhooks/internal/config"
	"campaign-webhooks/internal/httpapi"
	"campaign-webhooks/internal/storage"
	"campaign-webhooks/internal/webhook"
	"campaign-webhooks/pkg/logger"
	"campaign-webhooks/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.SecretDefaulted() {
		log.Warn("AC_WEBHOOK_SECRET not set, using built-in default; override it in production")
	}
	if cfg.Webhook.AdminToken == config.DefaultAdminToken {
		log.Warn("ADMIN_TOKEN not set, using built-in default; override it in production")
	}

	rdb := openStatsRedis(rootCtx, cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	// Storage failure does not abort startup: the process keeps
	// serving 503s so the PaaS health check can surface the reason
	// instead of the service crash-looping.
	handlers, store, err := buildHandlers(rootCtx, cfg, rdb, log)
	if err != nil {
		log.Error("storage init failed, starting degraded", "backend", cfg.Backend(), "err", err)
	}
	if store != nil {
		defer store.Close()
	}

	r := httpapi.NewRouter(log, handlers, httpapi.RouterConfig{
		WebhookSecret: cfg.Webhook.Secret,
		AdminToken:    cfg.Webhook.AdminToken,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "backend", cfg.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

// buildHandlers opens the configured store (plus the optional Redis
// stats cache) and assembles the ingestion service. On storage failure
// it returns Unavailable handlers and the error.
func buildHandlers(ctx context.Context, cfg config.Config, rdb *redis.Client, log *slog.Logger) (httpapi.Handlers, webhook.Store, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return httpapi.NewUnavailableHandlers(err.Error()), nil, err
	}
	log.Info("storage initialized", "backend", cfg.Backend())

	if rdb != nil {
		store = cache.Wrap(store, cache.NewStatsCache(rdb, cfg.Redis.StatsCacheTTL))
	}

	svc := webhook.NewService(store)
	return httpapi.NewHandlers(svc, store, cfg.Backend()), store, nil
}

func openStore(ctx context.Context, cfg config.Config) (webhook.Store, error) {
	if cfg.Backend() == config.BackendPostgres {
		return storage.OpenPostgres(ctx, cfg.Storage.DatabaseURL)
	}
	return storage.OpenSQLite(ctx, cfg.Storage.SQLitePath)
}

// openStatsRedis returns nil when Redis is not configured or not
// reachable; the stats cache is optional infrastructure.
func openStatsRedis(ctx context.Context, cfg config.Config, log *slog.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.Redis.Addr})
	if err != nil {
		log.Warn("redis init failed, running without stats cache", "err", err)
		return nil
	}
	log.Info("stats cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.StatsCacheTTL)
	return rdb
}
