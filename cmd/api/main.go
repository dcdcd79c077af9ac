package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutoria-app/tutoria-api/internal/handler"
	"github.com/tutoria-app/tutoria-api/internal/repository"
	"github.com/tutoria-app/tutoria-api/internal/service"
	"github.com/tutoria-app/tutoria-api/pkg/cache"
	"github.com/tutoria-app/tutoria-api/pkg/config"
	"github.com/tutoria-app/tutoria-api/pkg/database"
	"github.com/tutoria-app/tutoria-api/pkg/logger"
	"github.com/tutoria-app/tutoria-api/pkg/report"
)

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
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		logr.Sugar().Fatalw("schema migration failed", "error", err)
	}
	cancel()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	authSvc := service.NewAuthService(userRepo, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	if err := userSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		cancel()
		logr.Sugar().Fatalw("admin bootstrap failed", "error", err)
	}
	cancel()

	studentSvc := service.NewStudentService(studentRepo, attendanceRepo, cacheSvc, validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentSvc, classSvc, studentRepo, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, classSvc, cacheSvc, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentSvc, validate, logr)
	reportSvc := service.NewReportService(report.NewRenderer(), studentSvc, attendanceSvc, paymentSvc, logr)

	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Users:       handler.NewUserHandler(userSvc),
		Students:    handler.NewStudentHandler(studentSvc, reportSvc),
		Classes:     handler.NewClassHandler(classSvc, enrollmentSvc, attendanceSvc),
		Attendance:  handler.NewAttendanceHandler(attendanceSvc, reportSvc),
		Payments:    handler.NewPaymentHandler(paymentSvc, reportSvc),
		AuthService: authSvc,
		Metrics:     metricsSvc,
	}

	r := handler.NewRouter(cfg, logr, handlers, db)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
