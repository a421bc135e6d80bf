package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/employee-directory/internal/config"
	"github.com/cmlabs-hris/employee-directory/internal/domain/auth"
	appHTTP "github.com/cmlabs-hris/employee-directory/internal/handler/http"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/apiclient"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/cron"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/database"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/storage"
	employeeService "github.com/cmlabs-hris/employee-directory/internal/service/employee"
	sessionService "github.com/cmlabs-hris/employee-directory/internal/service/session"
	"github.com/go-chi/httplog/v3"
)

const storageNamespace = "directory"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kv, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage: ", err)
	}
	defer kv.Close()

	client, err := apiclient.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		log.Fatal("Failed to initialize API client: ", err)
	}

	sessions := sessionService.NewSessionService(client, kv, sessionService.Options{
		RestoreMode:         auth.RestoreMode(cfg.Session.RestoreMode),
		ClockSkew:           cfg.Session.ClockSkew,
		LogoutOnAuthFailure: cfg.Session.LogoutOnAuthFailure,
		Logger:              logger,
	})
	employees := employeeService.NewEmployeeService(client.WithTokenSource(sessions), sessions, logger)

	// Guarded routes wait on Ready, so the server can start before this finishes.
	go func() {
		if err := sessions.Restore(ctx); err != nil {
			logger.Error("Failed to restore session", slog.String("error", err.Error()))
		}
	}()

	if auth.RestoreMode(cfg.Session.RestoreMode) == auth.RestoreExpiry {
		scheduler := cron.NewScheduler(logger)
		scheduler.AddJob("session-expiry", cfg.Session.SweepInterval, sessions.SweepExpired)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	sessionHandler := appHTTP.NewSessionHandler(sessions)
	employeeHandler := appHTTP.NewEmployeeHandler(employees)
	eventHandler := appHTTP.NewEventHandler(sessions, employees)

	router := appHTTP.NewRouter(sessions, sessionHandler, employeeHandler, eventHandler, appHTTP.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Starting server", slog.String("addr", srv.Addr), slog.String("backend", cfg.API.BaseURL))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "employee-directory"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.KeyValueStorage, error) {
	switch cfg.Storage.Type {
	case storage.TypeFile:
		return storage.NewLocalStorage(cfg.Storage.Path)
	case storage.TypeSQLite:
		path := cfg.Storage.Path
		if !strings.HasSuffix(path, ".db") {
			path = filepath.Join(path, "directory.db")
		}
		return storage.NewSQLiteStorage(path)
	case storage.TypePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		kv, err := storage.NewPostgresStorage(ctx, db, storageNamespace)
		if err != nil {
			db.Close()
			return nil, err
		}
		return kv, nil
	case storage.TypeRedis:
		return storage.NewRedisStorage(cfg.Redis.URL, storageNamespace+":")
	case storage.TypeMemory:
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
}
