package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/config"
	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	appHTTP "github.com/cmlabs-hris/leave-engine/internal/handler/http"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-engine/internal/repository/memory"
	"github.com/cmlabs-hris/leave-engine/internal/repository/mongodb"
	"github.com/cmlabs-hris/leave-engine/internal/repository/postgresql"
	leaveService "github.com/cmlabs-hris/leave-engine/internal/service/leave"
	"github.com/go-chi/httplog/v3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env == "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-engine"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profileRepo, settingsRepo, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	requestService := leaveService.NewRequestService(profileRepo, settingsRepo)
	reportService := leaveService.NewReportService(profileRepo)
	leaveSvc := leaveService.NewLeaveService(profileRepo, settingsRepo, requestService, reportService)

	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	router := appHTTP.NewRouter(JWTService, logger, cfg.App.CORSAllowedOrigins, leaveHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStorage wires the repositories for the configured driver.
func openStorage(ctx context.Context, cfg *config.Config) (leave.ProfileRepository, leave.SettingsRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return postgresql.NewLeaveProfileRepository(db), postgresql.NewLeaveSettingsRepository(db), db.Close, nil

	case config.StorageDriverMongoDB:
		db, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		if err := mongodb.EnsureIndexes(ctx, db.Database); err != nil {
			_ = db.Close(context.Background())
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := db.Close(context.Background()); err != nil {
				slog.Error("mongodb disconnect", "error", err)
			}
		}
		return mongodb.NewLeaveProfileRepository(db.Database), mongodb.NewLeaveSettingsRepository(db.Database), closeFn, nil

	case config.StorageDriverMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		return memory.NewLeaveProfileRepository(), memory.NewLeaveSettingsRepository(), func() {}, nil
	}

	return nil, nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
