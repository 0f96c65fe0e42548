package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-enrollment-api/api/swagger"
	"github.com/noah-isme/course-enrollment-api/internal/handler"
	"github.com/noah-isme/course-enrollment-api/internal/middleware"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	"github.com/noah-isme/course-enrollment-api/pkg/cache"
	"github.com/noah-isme/course-enrollment-api/pkg/config"
	"github.com/noah-isme/course-enrollment-api/pkg/database"
	"github.com/noah-isme/course-enrollment-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-enrollment-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-enrollment-api/pkg/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "course-api")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureCourseSchema(ctx, db); err != nil {
		logr.Fatal("failed to ensure schema", zap.Error(err))
	}
	if cfg.Seed.Enabled {
		n, err := database.SeedCourses(ctx, db)
		if err != nil {
			logr.Fatal("failed to seed courses", zap.Error(err))
		}
		logr.Info("courses seeded", zap.Int("inserted", n))
	}

	metrics := service.NewMetricsService()
	checks := []service.HealthCheck{{Name: "database", Required: true, Probe: db.PingContext}}

	var redisClient redis.UniversalClient
	if cfg.Cache.Enabled {
		rc, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, course cache disabled", zap.Error(err))
		} else {
			redisClient = rc
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, redisClient != nil)
	if redisClient != nil {
		checks = append(checks, service.HealthCheck{Name: "redis", Probe: cacheRepo.Ping})
	}

	courseSvc := service.NewCourseService(repository.NewCourseRepository(db), cacheSvc, validator.New(), logr)
	healthSvc := service.NewHealthService(logr, checks...)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.Security.HeaderName))

	handler.RegisterOpsRoutes(r, handler.NewHealthHandler("course-api", healthSvc), handler.NewMetricsHandler(metrics))

	api := r.Group(cfg.APIPrefix, middleware.APIKey(cfg.Security.HeaderName, cfg.Security.APIKey))
	handler.RegisterCourseRoutes(api, handler.NewCourseHandler(courseSvc))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env), zap.Bool("cache", cacheSvc.Enabled()))
	if err := server.Run(ctx, addr, r, logr); err != nil {
		logr.Error("server failed", zap.Error(err))
	}
}
