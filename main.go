// Package main provides the main entry point for the personnel directory service
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/personnel-directory/app/handlers"
	"github.com/amirphl/personnel-directory/app/middleware"
	"github.com/amirphl/personnel-directory/app/router"
	"github.com/amirphl/personnel-directory/app/services"
	businessflow "github.com/amirphl/personnel-directory/business_flow"
	"github.com/amirphl/personnel-directory/config"
	"github.com/amirphl/personnel-directory/models"
	"github.com/amirphl/personnel-directory/repository"
	"github.com/amirphl/personnel-directory/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	closeLog := initializeLogging(cfg.Logging)
	defer closeLog()

	log.Println("Starting personnel directory...")

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	// Stop background workers after in-flight requests drain
	for _, fn := range app.stopFuncs {
		fn()
	}

	log.Println("Server stopped")
}

// initializeLogging routes the standard logger to stdout, a rotated file, or both
func initializeLogging(cfg config.LoggingConfig) func() {
	log.SetFlags(log.LstdFlags | log.LUTC)
	if cfg.Output == "stdout" {
		log.SetOutput(os.Stdout)
		return func() {}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	var out io.Writer = rotator
	if cfg.Output == "both" {
		out = io.MultiWriter(os.Stdout, rotator)
	}
	log.SetOutput(out)

	return func() {
		if err := rotator.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	if cfg.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Println("Database schema migrated")
	}

	return db, nil
}

// initializeStore selects the record store backend
func initializeStore(cfg *config.AppConfig) (*repository.Store, func(), error) {
	switch cfg.Store.Provider {
	case "postgres":
		db, err := initializeDatabase(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repository.NewGormStore(db), closeDB, nil
	default:
		log.Println("Using in-memory store; records are lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisAddr, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor periodically pings Redis; the returned func stops it
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// ensureAdmin creates the configured admin on first start; an existing admin keeps its password
func ensureAdmin(ctx context.Context, repo repository.AdminRepository, cfg config.SecurityConfig) error {
	existing, err := repo.ByUsername(ctx, cfg.AdminUsername)
	if err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := businessflow.HashAdminPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}

	active := true
	now := utils.UTCNow()
	admin := &models.Admin{
		UUID:              uuid.New(),
		Username:          cfg.AdminUsername,
		PasswordHash:      hash,
		IsActive:          &active,
		PasswordChangedAt: &now,
	}
	if err := repo.Save(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	log.Printf("Admin %q created", cfg.AdminUsername)
	return nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.AppConfig) (*Application, error) {
	var stopFuncs []func()

	store, closeStore, err := initializeStore(cfg)
	if err != nil {
		return nil, err
	}
	stopFuncs = append(stopFuncs, closeStore)

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 30*time.Second))
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
	}

	bootCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ensureAdmin(bootCtx, store.Admins, cfg.Security); err != nil {
		return nil, err
	}
	if cfg.Store.Seed {
		if err := repository.Seed(bootCtx, store); err != nil {
			return nil, fmt.Errorf("failed to seed directory: %w", err)
		}
	}

	// Initialize services
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	var captchaSvc services.CaptchaService
	if cfg.Captcha.Enabled {
		captchaSvc, err = services.NewCaptchaServiceRotate(cfg.Captcha.TTL, 15, 300, nil)
		if err != nil {
			return nil, err
		}
		stopFuncs = append(stopFuncs, captchaSvc.Close)
	}

	// Initialize flows
	guard := businessflow.NewSessionGuard(store.Admins, businessflow.SessionGuardConfig{
		AdminUsername:         cfg.Security.AdminUsername,
		BcryptCost:            cfg.Security.BcryptCost,
		CountScreenedAttempts: cfg.Security.CountScreenedAttempts,
	})
	stopFuncs = append(stopFuncs, guard.Close)

	cache := businessflow.NewDirectoryCache(rc, cfg.Cache.RedisPrefix, cfg.Cache.DefaultTTL)
	personnelFlow := businessflow.NewPersonnelFlow(store.Personnel, cache)
	importPipeline := businessflow.NewImportPipeline(personnelFlow, cfg.Import.MaxFileSize)
	exportFlow := businessflow.NewExportFlow(store.Personnel, nil)
	directoryFlow := businessflow.NewDirectoryFlow(store, cache)
	settingsFlow := businessflow.NewSettingsFlow(store.Settings)

	// Initialize handlers
	h := router.Handlers{
		Auth:         handlers.NewAdminAuthHandler(guard, tokenService, captchaSvc),
		Personnel:    handlers.NewPersonnelHandler(personnelFlow),
		Directory:    handlers.NewDirectoryHandler(directoryFlow),
		ImportExport: handlers.NewImportExportHandler(importPipeline, exportFlow),
		Settings:     handlers.NewSettingsHandler(settingsFlow),
	}

	authMiddleware := middleware.NewAuthMiddleware(tokenService, guard)
	appRouter := router.NewFiberRouter(cfg, h, authMiddleware)

	return &Application{
		router:    appRouter,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
