package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"searchapp_backend/database"
	"searchapp_backend/internal/cache"
	"searchapp_backend/internal/config"
	"searchapp_backend/internal/handlers"
	"searchapp_backend/internal/logger"
	"searchapp_backend/internal/middleware"
	"searchapp_backend/internal/routes"
	"searchapp_backend/internal/services"
	"searchapp_backend/internal/storage"
	"searchapp_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Run поднимает HTTP-сервер и ждет SIGINT/SIGTERM
func Run(cfg *config.Config) error {
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is required")
	}
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.ConnectGorm(cfg)
	if err != nil {
		return err
	}
	logger.Info("Database connected")

	if cfg.Database.Driver == "sqlite" {
		// для локального запуска схема создается сама
		if err := database.AutoMigrate(gormDB); err != nil {
			return err
		}
	}

	ctx := context.Background()

	storageInstance, err := storage.NewStorage(ctx, storageConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	settingsCache, closeCache := initializeCache(ctx, cfg)
	defer closeCache()

	ginRouter := SetupRouter(cfg, gormDB, storageInstance, settingsCache)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server startup error: %w", err)
	case sig := <-quit:
		logger.Info("Shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("Server stopped")
	return nil
}

// SetupRouter собирает сервисы, хэндлеры и маршруты. Используется Run и тестами.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, storageInstance storage.Storage, settingsCache cache.CompanySettingsCache) *gin.Engine {
	// 1. Сервисы
	serviceContainer := services.NewServiceContainer(cfg, storageInstance, settingsCache)

	// 2. Хэндлеры
	appHandlers := initializeHandlers(cfg, serviceContainer, gormDB)

	// 3. Gin
	ginRouter := initializeGinRouter(gormDB)

	// 4. Маршруты
	routes.RegisterRoutes(ginRouter, appHandlers, []byte(cfg.Auth.JWTSecret))

	return ginRouter
}

func initializeHandlers(cfg *config.Config, services *services.ServiceContainer, gormDB *gorm.DB) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		SearchHandler:  handlers.NewSearchHandler(baseHandler, services.SearchService, services.PhotoService, cfg.Upload.MaxPhotoSize),
		ReportHandler:  handlers.NewReportHandler(baseHandler, services.SharingService, services.ReportService),
		CompanyHandler: handlers.NewCompanyHandler(baseHandler, services.CompanySettingsService, cfg.Upload.MaxPhotoSize),
		HealthHandler:  handlers.NewHealthHandler(gormDB),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

// initializeCache - redis, если задан redis.url; иначе кэша нет
func initializeCache(ctx context.Context, cfg *config.Config) (cache.CompanySettingsCache, func()) {
	rdb, err := cache.Connect(ctx, cache.RedisOptions{URL: cfg.Redis.URL})
	if errors.Is(err, cache.ErrRedisDisabled) {
		logger.Info("Redis is not configured, company settings cache disabled")
		return cache.NoopCompanySettingsCache{}, func() {}
	}
	if err != nil {
		logger.Warn("Redis unavailable, company settings cache disabled", "error", err.Error())
		return cache.NoopCompanySettingsCache{}, func() {}
	}
	logger.Info("Redis connected")

	ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
	return cache.NewRedisCompanySettingsCache(rdb, ttl), func() { rdb.Close() }
}

func storageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Type:            cfg.Storage.Type,
		BasePath:        cfg.Storage.BasePath,
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.Region,
		AccessKey:       cfg.Storage.AccessKey,
		SecretKey:       cfg.Storage.SecretKey,
		Endpoint:        cfg.Storage.Endpoint,
		UseSSL:          cfg.Storage.UseSSL,
		CredentialsFile: cfg.Storage.CredentialsFile,
	}
}
