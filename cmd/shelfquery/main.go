package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfquery/internal/config"
	"github.com/kailas-cloud/shelfquery/internal/db"
	dbBolt "github.com/kailas-cloud/shelfquery/internal/db/bolt"
	dbMemory "github.com/kailas-cloud/shelfquery/internal/db/memory"
	dbRedis "github.com/kailas-cloud/shelfquery/internal/db/redis"
	domcat "github.com/kailas-cloud/shelfquery/internal/domain/catalog"
	logpkg "github.com/kailas-cloud/shelfquery/internal/logger"
	"github.com/kailas-cloud/shelfquery/internal/metrics"
	recordrepo "github.com/kailas-cloud/shelfquery/internal/repository/record"
	chiTransport "github.com/kailas-cloud/shelfquery/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/shelfquery/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/shelfquery/internal/usecase/health"
	"github.com/kailas-cloud/shelfquery/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting shelfquery API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := openStore(cfg.Database, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterQueryMetrics()

	bookRepo := recordrepo.New(store, domcat.Books)
	authorRepo := recordrepo.New(store, domcat.Authors)

	if cfg.Storage.Seed {
		if err := seed(ctx, bookRepo, authorRepo); err != nil {
			logger.Fatal("Failed to seed catalog", zap.Error(err))
		}
		logger.Info("Catalog seeded",
			zap.Int("books", len(domcat.SeedBooks())),
			zap.Int("authors", len(domcat.SeedAuthors())),
		)
	}

	catalogSvc := cataloguc.New(bookRepo, authorRepo, cfg.Query.MinSearchLength)
	healthSvc := healthuc.New(store, bookRepo, authorRepo)

	server := chiTransport.NewServer(catalogSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore creates the database store for the configured driver.
func openStore(dbCfg config.DatabaseConfig, storageCfg config.StorageConfig) (db.Store, error) {
	switch dbCfg.Driver {
	case config.DriverMemory:
		return dbMemory.NewStore(), nil
	case config.DriverRedis, config.DriverValkey:
		// Valkey speaks the same protocol and ships the JSON module.
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     dbCfg.Addrs,
			Username:  dbCfg.Username,
			Password:  dbCfg.Password,
			DB:        dbCfg.DB,
			KeyPrefix: storageCfg.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverBolt:
		s, err := dbBolt.NewStore(dbCfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", dbCfg.Driver)
	}
}

// seed replaces both collections with the sample catalog.
func seed(ctx context.Context, books, authors *recordrepo.Repo) error {
	if err := authors.Seed(ctx, domcat.SeedAuthors()); err != nil {
		return fmt.Errorf("seed authors: %w", err)
	}
	if err := books.Seed(ctx, domcat.SeedBooks()); err != nil {
		return fmt.Errorf("seed books: %w", err)
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success":   false,
						"code":      "internal_error",
						"message":   "internal error",
						"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ctx := logpkg.WithFields(logpkg.ContextWithLogger(r.Context(), logger),
				zap.String("request_id", requestID))
			reqLogger := logpkg.FromContext(ctx)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
