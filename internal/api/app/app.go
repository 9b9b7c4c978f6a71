package app

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

	"github.com/comepass/comepass/internal/api/cache"
	"github.com/comepass/comepass/internal/api/gpt"
	httpapi "github.com/comepass/comepass/internal/api/http"
	"github.com/comepass/comepass/internal/api/service"
	"github.com/comepass/comepass/internal/api/store"
	"github.com/comepass/comepass/internal/api/store/drivers/sqlite"
	"github.com/comepass/comepass/pkg/jwtx"
	"github.com/comepass/comepass/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the API together: storage, cache, services and the HTTP
// server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	cache    *cache.AccessTokenCache
	location *time.Location

	authService         *service.AuthService
	userService         *service.UserService
	roleService         *service.RoleService
	permissionService   *service.PermissionService
	chatService         *service.ChatService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. The database
// is migrated and seeded before this returns.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "comepass-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("COMEPASS_JWT_SECRET is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	app.location = loc

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	app.cache, err = cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		_ = app.cache.Close()
		return nil, err
	}

	seed := &service.SeedService{
		Store:         app.db,
		AdminUsername: cfg.AdminUsername,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Now:           app.now,
	}
	if err := seed.Run(ctx); err != nil {
		_ = app.db.Close()
		_ = app.cache.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	app.initHTTP()
	return app, nil
}

// now is the canonical clock: wall time in the configured timezone.
func (app *Application) now() time.Time {
	return time.Now().In(app.location)
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("api starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

// Shutdown stops the server, the housekeeping worker and both backing stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down api...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing redis", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("api stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() error {
	codec, err := jwtx.NewCodec(app.cfg.JWTSecret, app.cfg.JWTAlgorithm)
	if err != nil {
		return err
	}

	app.authService = &service.AuthService{
		Store:      app.db,
		Cache:      app.cache,
		Codec:      codec,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
		Now:        app.now,
	}
	app.userService = &service.UserService{Store: app.db, Auth: app.authService, Now: app.now}
	app.roleService = &service.RoleService{Store: app.db, Now: app.now}
	app.permissionService = &service.PermissionService{Store: app.db, Now: app.now}
	app.chatService = &service.ChatService{
		Store:     app.db,
		Completer: gpt.NewClient(app.cfg.OpenAIBaseURL, app.cfg.OpenAIKey),
		Now:       app.now,
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.Now = app.now
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.cache, app.logger)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.RoleService = app.roleService
	router.PermissionService = app.permissionService
	router.ChatService = app.chatService
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
