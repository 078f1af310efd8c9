package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/dresscirc/pricing-api/api/swagger"
	"github.com/dresscirc/pricing-api/internal/handler"
	"github.com/dresscirc/pricing-api/internal/models"
	"github.com/dresscirc/pricing-api/internal/middleware"
	"github.com/dresscirc/pricing-api/internal/repository"
	"github.com/dresscirc/pricing-api/internal/service"
	"github.com/dresscirc/pricing-api/pkg/cache"
	"github.com/dresscirc/pricing-api/pkg/config"
	"github.com/dresscirc/pricing-api/pkg/database"
	"github.com/dresscirc/pricing-api/pkg/logger"
	corsmiddleware "github.com/dresscirc/pricing-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dresscirc/pricing-api/pkg/middleware/requestid"
	"github.com/dresscirc/pricing-api/pkg/storage"
)

// @title Occasion Pricing API
// @version 1.0.0
// @description Suggested rental pricing for apparel items by season and occasion
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()

	calendarSource, err := buildCalendarSource(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init calendar source", "error", err)
	}
	calendarSvc := service.NewCalendarService(calendarSource, metricsSvc, logr)

	// Fail fast on an unusable calendar: a misconfigured source must abort
	// startup rather than serve partial data.
	if _, err := calendarSvc.Reload(context.Background()); err != nil {
		logr.Sugar().Fatalw("failed to load occasion calendar", "error", err)
	}

	cacheSvc := buildCacheService(cfg, metricsSvc, logr)

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, metricsSvc, logr, nil, nil)

	pricingSvc := service.NewPricingService(calendarSvc, cacheSvc, nil, cfg.Cache.TTL, logr)

	pricingHandler := handler.NewPricingHandler(pricingSvc, exportSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/pricing/report", pricingHandler.Compute)
		api.POST("/pricing/report/export", pricingHandler.Export)
		api.GET("/export/:token", exportHandler.Download)
		api.GET("/calendar", calendarHandler.Get)
		api.POST("/calendar/reload", middleware.AdminAuth(cfg.Admin.JWTSecret), calendarHandler.Reload)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	scheduler := startScheduler(cfg, calendarSvc, exportSvc, logr)
	defer scheduler.Stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "calendar_source", cfg.Calendar.Source)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

type calendarLoader interface {
	Load(ctx context.Context) (*models.CalendarSnapshot, error)
}

func buildCalendarSource(cfg *config.Config, logr *zap.Logger) (calendarLoader, error) {
	switch cfg.Calendar.Source {
	case config.CalendarSourcePostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		return repository.NewCalendarSQLRepository(db, cfg.Calendar.Table, logr), nil
	case config.CalendarSourceFile, "":
		return repository.NewCalendarFileRepository(cfg.Calendar.Path, logr), nil
	default:
		return nil, fmt.Errorf("unknown calendar source %q", cfg.Calendar.Source)
	}
}

func buildCacheService(cfg *config.Config, metricsSvc *service.MetricsService, logr *zap.Logger) *service.CacheService {
	if !cfg.Cache.Enabled {
		return service.NewCacheService(nil, metricsSvc, cfg.Cache.TTL, logr, false)
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, running without report cache", "error", err)
		return service.NewCacheService(nil, metricsSvc, cfg.Cache.TTL, logr, false)
	}
	repo := repository.NewCacheRepository(client, logr)
	return service.NewCacheService(repo, metricsSvc, cfg.Cache.TTL, logr, true)
}

// startScheduler wires the export cleanup job and, when configured, periodic
// calendar refresh.
func startScheduler(cfg *config.Config, calendars *service.CalendarService, exports *service.ExportService, logr *zap.Logger) *cron.Cron {
	c := cron.New()

	cleanupSpec := fmt.Sprintf("@every %s", cfg.Exports.CleanupInterval)
	if _, err := c.AddFunc(cleanupSpec, func() {
		deleted, err := exports.Cleanup(0)
		if err != nil {
			logr.Sugar().Warnw("export cleanup failed", "error", err)
			return
		}
		if len(deleted) > 0 {
			logr.Sugar().Infow("cleaned up expired exports", "count", len(deleted))
		}
	}); err != nil {
		logr.Sugar().Warnw("failed to schedule export cleanup", "error", err)
	}

	if cfg.Calendar.RefreshCron != "" {
		if _, err := c.AddFunc(cfg.Calendar.RefreshCron, func() {
			if _, err := calendars.Reload(context.Background()); err != nil {
				logr.Sugar().Warnw("scheduled calendar refresh failed", "error", err)
			}
		}); err != nil {
			logr.Sugar().Warnw("failed to schedule calendar refresh", "error", err, "spec", cfg.Calendar.RefreshCron)
		}
	}

	c.Start()
	return c
}
