package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/chargeback-backend/internal/data/db"
	"github.com/yungbote/chargeback-backend/internal/http"
	"github.com/yungbote/chargeback-backend/internal/observability"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

const serviceName = "chargeback-backend"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Server   *http.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// Open connects and migrates the database. It is all the migrate and
// seed-admin commands need.
func Open(log *logger.Logger, cfg Config) (*App, error) {
	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()
	return &App{
		Log:   log,
		DB:    theDB,
		Cfg:   cfg,
		Repos: wireRepos(theDB, log),
		pg:    pg,
	}, nil
}

// New wires the full HTTP service.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	a, err := Open(log, cfg)
	if err != nil {
		return nil, err
	}

	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients

	serviceset, err := wireServices(log, cfg, a.Repos, clients)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Services = serviceset

	if _, err := a.SeedAdmin(ctx); err != nil {
		log.Warn("Admin seed failed", "error", err)
	}

	handlerset := wireHandlers(log, cfg, serviceset)
	middleware := wireMiddleware(log, serviceset)
	a.Server = wireServer(log, cfg, metrics, handlerset, middleware)
	return a, nil
}

// SeedAdmin creates the configured admin account once. It is a no-op when
// ADMIN_EMAIL or ADMIN_PASSWORD is unset.
func (a *App) SeedAdmin(ctx context.Context) (bool, error) {
	if a.Cfg.AdminEmail == "" || a.Cfg.AdminPassword == "" {
		return false, nil
	}
	users := a.Services.User
	if users == nil {
		users = newUserService(a)
	}
	created, err := users.EnsureAdmin(ctx, a.Cfg.AdminEmail, a.Cfg.AdminPassword, a.Cfg.AdminDisplayName)
	if err != nil {
		return false, err
	}
	if created {
		a.Log.Info("Admin user created", "email", a.Cfg.AdminEmail)
	}
	return created, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, a.Cfg.Addr(), a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
