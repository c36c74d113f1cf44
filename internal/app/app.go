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

	"cms-backend/internal/config"
	"cms-backend/internal/database"
	"cms-backend/internal/event"
	"cms-backend/internal/handler"
	"cms-backend/internal/middleware"
	"cms-backend/internal/repository"
	"cms-backend/internal/router"
	"cms-backend/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	countryRepo := repository.NewCountryRepository(pool)
	emailConfigRepo := repository.NewEmailConfigRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	slog.Info("database ready")

	seeder := service.NewSeeder(userRepo, companyRepo, cfg.SeedAdminUsername, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err := seeder.Run(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed initial data: %w", err)
	}

	codec, err := service.NewTokenCodec(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	bus := event.NewBus()
	guard := service.NewCompanyScopeGuard()
	policy := service.NewAccessControlPolicy()

	authService := service.NewAuthService(userRepo, companyRepo, tokenRepo, codec, guard, bus, cfg.JWTAccessTTL, cfg.RefreshTTL)
	companyService := service.NewCompanyService(companyRepo)
	inventoryService := service.NewInventoryService(inventoryRepo, guard)
	analyticsService := service.NewAnalyticsService(inventoryRepo, guard)
	countryService := service.NewCountryService(countryRepo)
	emailConfigService := service.NewEmailConfigService(emailConfigRepo, guard)
	userService := service.NewUserService(userRepo, companyRepo, tokenRepo)
	auditService := service.NewAuditService(auditRepo)

	var sender service.Sender = service.NoopSender{}
	if cfg.SMTPHost != "" {
		sender = service.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}
	mailer := service.NewMailer(bus, sender)

	authMiddleware := middleware.NewAuthMiddleware(authService, policy)
	middleware.InitMetrics()

	appRouter := router.New(cfg, authMiddleware, middleware.Audit(auditService), router.Handlers{
		Auth:        handler.NewAuthHandler(authService, cfg.RefreshTTL),
		Company:     handler.NewCompanyHandler(companyService),
		Inventory:   handler.NewInventoryHandler(inventoryService),
		Analytics:   handler.NewAnalyticsHandler(analyticsService),
		Country:     handler.NewCountryHandler(countryService),
		EmailConfig: handler.NewEmailConfigHandler(emailConfigService),
		User:        handler.NewUserHandler(userService),
		Audit:       handler.NewAuditHandler(auditService),
	})

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	go mailer.Run(backgroundCtx)
	go runTokenSweep(backgroundCtx, tokenRepo, cfg.TokenSweepInterval)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() { backgroundCancel() },
			func() { db.Close() },
		},
	}, nil
}

// runTokenSweep periodically deletes dead session rows: revoked, expired or
// without a refresh token.
func runTokenSweep(ctx context.Context, tokens *repository.TokenRepository, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
			removed, err := tokens.Sweep(sweepCtx, time.Now().UTC())
			cancel()
			if err != nil {
				slog.Error("session token sweep failed", "error", err)
				continue
			}
			slog.Info("session token sweep complete", "removed", removed)
		}
	}
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := a.server.Shutdown(ctx)
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
