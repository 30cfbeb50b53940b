package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/shopapi/internal/cache"
	"github.com/Skotchmaster/shopapi/internal/config"
	"github.com/Skotchmaster/shopapi/internal/db"
	"github.com/Skotchmaster/shopapi/internal/events"
	"github.com/Skotchmaster/shopapi/internal/httpserver"
	"github.com/Skotchmaster/shopapi/internal/logging"
	authmw "github.com/Skotchmaster/shopapi/internal/middleware/auth"
	"github.com/Skotchmaster/shopapi/internal/repo"
	"github.com/Skotchmaster/shopapi/internal/search"
	"github.com/Skotchmaster/shopapi/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(ctx, gdb)
	}
	cancel()
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	r := repo.New(gdb)

	productCache, closeCache := newCache(cfg, logger)
	defer closeCache()

	publisher := newPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("publisher_close_error", "error", err)
		}
	}()

	index := newIndex(cfg, logger)
	_, searchEnabled := index.(*search.Breaker)

	catalogSvc := service.NewCatalogService(r, productCache, publisher, index)
	cartSvc := service.NewCartService(r, catalogSvc, publisher, cfg.Currency)
	authSvc := service.NewAuthService(r, publisher, cfg.SessionSecret, cfg.SessionTTL)

	bootstrap(authSvc, cfg, logger)

	e := httpserver.New(logger, httpserver.Options{
		CSRFEnabled:  cfg.CSRFEnabled,
		CookieSecure: cfg.CookieSecure,
	})
	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		CartHandler:    &httpserver.CartHTTP{Svc: cartSvc},
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, CookieSecure: cfg.CookieSecure},
		Session:        authmw.NewSessionMiddleware(authSvc),
		DB:             gdb,
		SearchEnabled:  searchEnabled,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Warn("db_close_error", "error", err)
	}

	logger.Info("server_stopped")
}

// bootstrap seeds the configured user and drops dead sessions.
func bootstrap(authSvc *service.AuthService, cfg *config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.SeedUsername != "" {
		created, err := authSvc.SeedUser(ctx, cfg.SeedUsername, cfg.SeedPassword)
		if err != nil {
			log.Fatalf("seed user: %v", err)
		}
		logger.Info("seed_user", "username", cfg.SeedUsername, "created", created)
	}

	n, err := authSvc.PurgeSessions(ctx)
	if err != nil {
		logger.Warn("purge_sessions_error", "error", err)
		return
	}
	logger.Info("purge_sessions", "removed", n)
}

func newCache(cfg *config.Config, logger *slog.Logger) (cache.ProductCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.Noop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// reads fall back to the store on every cache error
		logger.Warn("redis_unreachable", "addr", cfg.RedisAddr, "error", err)
	}

	return cache.NewRedisCache(client, cfg.CacheTTL), func() { _ = client.Close() }
}

func newPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.Noop{}
	}
	logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	return events.NewKafkaPublisher(cfg.KafkaBrokers, logger)
}

func newIndex(cfg *config.Config, logger *slog.Logger) search.Index {
	if cfg.ESURL == "" {
		return search.Noop{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := search.NewClient(ctx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
	if err != nil {
		logger.Warn("elasticsearch_unavailable", "url", cfg.ESURL, "error", err)
		return search.Noop{}
	}

	logger.Info("elasticsearch_enabled", "url", cfg.ESURL, "index", cfg.ESIndex)
	return search.NewBreaker(search.NewESIndex(client, cfg.ESIndex))
}
