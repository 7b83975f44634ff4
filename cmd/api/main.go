package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/studyloop/studyloop-api/api/swagger"
	"github.com/studyloop/studyloop-api/internal/handler"
	"github.com/studyloop/studyloop-api/internal/middleware"
	"github.com/studyloop/studyloop-api/internal/repository"
	"github.com/studyloop/studyloop-api/internal/service"
	"github.com/studyloop/studyloop-api/pkg/cache"
	"github.com/studyloop/studyloop-api/pkg/config"
	"github.com/studyloop/studyloop-api/pkg/database"
	"github.com/studyloop/studyloop-api/pkg/logger"
	corsmiddleware "github.com/studyloop/studyloop-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studyloop/studyloop-api/pkg/middleware/requestid"
)

// @title StudyLoop Analytics API
// @version 1.0.0
// @description Learning progress analytics for the StudyLoop platform
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("postgres connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Analytics.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("redis connection failed", "error", err)
		}
		repo := repository.NewCacheRepository(redisClient, logr)
		defer repo.Close() //nolint:errcheck
		cacheRepo = repo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled)

	activityRepo := repository.NewActivityRepository(db)
	analyticsSvc := service.NewAnalyticsService(service.AnalyticsServiceParams{
		Repo:    activityRepo,
		Cache:   cacheSvc,
		Metrics: metricsSvc,
		Logger:  logr,
		Config: service.AnalyticsServiceConfig{
			CacheTTL: cfg.Analytics.CacheTTL,
			RandSeed: cfg.Analytics.RandSeed,
		},
	})
	exportSvc := service.NewExportService(analyticsSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	if cfg.Auth.GuardEnabled {
		authSvc := service.NewAuthService(cfg.Auth.Secret)
		api.Use(middleware.JWT(authSvc))
	}

	analytics := api.Group("/analytics")
	analytics.GET("/system", analyticsHandler.System)
	analytics.GET("/:userId", analyticsHandler.Dashboard)
	if cfg.Export.Enabled {
		analytics.GET("/:userId/export", analyticsHandler.Export)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
