package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ikkim/tagmanager-backend/config"
	"github.com/ikkim/tagmanager-backend/internal/app/cache"
	"github.com/ikkim/tagmanager-backend/internal/app/controller"
	"github.com/ikkim/tagmanager-backend/internal/app/repository"
	"github.com/ikkim/tagmanager-backend/internal/app/service"
	"github.com/ikkim/tagmanager-backend/internal/db"
	"github.com/ikkim/tagmanager-backend/internal/router"
	"github.com/ikkim/tagmanager-backend/internal/scheduler"
	"github.com/ikkim/tagmanager-backend/internal/storage"
	"github.com/ikkim/tagmanager-backend/pkg/logger"
	"github.com/ikkim/tagmanager-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Tag Manager Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize redis-backed category cache (optional)
	var categoryCache *cache.CategoryCache
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, category cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
			categoryCache = cache.NewCategoryCache(redis.GetClient(), cfg.Cache.CategoryTTL)
		}
	}

	// Initialize object storage for export archives (optional)
	var archiveStorage *storage.S3Storage
	if cfg.S3.Bucket != "" {
		archiveStorage = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	}

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	mappingRepo := repository.NewMappingRepository(db.GetDB())

	// Initialize services
	categoryService := service.NewCategoryService(categoryRepo, mappingRepo, categoryCache, db.GetDB())
	assignmentService := service.NewAssignmentService(mappingRepo, categoryRepo, productRepo)
	productService := service.NewProductService(productRepo, categoryRepo, mappingRepo)
	exportService := service.NewExportService(productRepo, mappingRepo, archiveStorage)

	// Initialize controllers
	categoryController := controller.NewCategoryController(categoryService, assignmentService)
	productController := controller.NewProductController(productService)
	assignmentController := controller.NewAssignmentController(assignmentService)
	exportController := controller.NewExportController(exportService)

	// Setup router
	r := router.NewRouter(
		categoryController,
		productController,
		assignmentController,
		exportController,
		cfg,
	)
	engine := r.Setup()

	// Start the cache warmer when the cache is active
	if categoryCache.Enabled() {
		warmScheduler := scheduler.NewCacheWarmScheduler(categoryService, cfg.Cache.WarmSchedule)
		if err := warmScheduler.Start(); err != nil {
			logger.Warn("Cache warm scheduler failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer warmScheduler.Stop()
		}
	}

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
