package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-enrollment-api/api/swagger"
	"github.com/noah-isme/course-enrollment-api/internal/client"
	"github.com/noah-isme/course-enrollment-api/internal/handler"
	"github.com/noah-isme/course-enrollment-api/internal/middleware"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	"github.com/noah-isme/course-enrollment-api/pkg/config"
	"github.com/noah-isme/course-enrollment-api/pkg/database"
	"github.com/noah-isme/course-enrollment-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-enrollment-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-enrollment-api/pkg/server"
)

// @title Student API
// @version 1.0.0
// @description Student registry and course enrollment orchestration
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "student-api")
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

	if err := database.EnsureStudentSchema(ctx, db); err != nil {
		logr.Fatal("failed to ensure schema", zap.Error(err))
	}
	if cfg.Seed.Enabled {
		n, err := database.SeedStudents(ctx, db)
		if err != nil {
			logr.Fatal("failed to seed students", zap.Error(err))
		}
		logr.Info("students seeded", zap.Int("inserted", n))
	}

	metrics := service.NewMetricsService()
	courseClient := client.NewCourseClient(client.Config{
		BaseURL:    cfg.CourseAPI.BaseURL,
		APIKey:     cfg.CourseAPI.APIKey,
		HeaderName: cfg.Security.HeaderName,
		Timeout:    cfg.CourseAPI.Timeout,
	}, metrics, logr)

	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	validate := validator.New()
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseClient, metrics, logr)
	exportSvc := service.NewExportService(studentRepo, logr)
	healthSvc := service.NewHealthService(logr,
		service.HealthCheck{Name: "database", Required: true, Probe: db.PingContext},
		service.HealthCheck{Name: "course_api", Probe: func(ctx context.Context) error {
			if !courseClient.Ping(ctx) {
				return fmt.Errorf("course service did not answer %s", cfg.CourseAPI.BaseURL)
			}
			return nil
		}},
	)

	monitor := service.NewUpstreamMonitor(courseClient, metrics, cfg.CourseAPI.HealthCheckInterval, logr)
	if err := monitor.Start(ctx); err != nil {
		logr.Fatal("failed to start upstream monitor", zap.Error(err))
	}
	defer monitor.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.Security.HeaderName))

	handler.RegisterOpsRoutes(r, handler.NewHealthHandler("student-api", healthSvc), handler.NewMetricsHandler(metrics))

	api := r.Group(cfg.APIPrefix, middleware.APIKey(cfg.Security.HeaderName, cfg.Security.APIKey))
	handler.RegisterStudentRoutes(api, handler.NewStudentHandler(studentSvc), handler.NewEnrollmentHandler(enrollmentSvc, exportSvc))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("course_api", cfg.CourseAPI.BaseURL))
	if err := server.Run(ctx, addr, r, logr); err != nil {
		logr.Error("server failed", zap.Error(err))
	}
}
