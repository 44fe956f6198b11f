package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/AyaSox/Recruitment-system-sub000/api/swagger"
	"github.com/AyaSox/Recruitment-system-sub000/internal/handler"
	"github.com/AyaSox/Recruitment-system-sub000/internal/middleware"
	"github.com/AyaSox/Recruitment-system-sub000/internal/repository"
	"github.com/AyaSox/Recruitment-system-sub000/internal/service"
	"github.com/AyaSox/Recruitment-system-sub000/internal/upload"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/cache"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/config"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/database"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/jobs"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/logger"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/mailer"
	corsmiddleware "github.com/AyaSox/Recruitment-system-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/AyaSox/Recruitment-system-sub000/pkg/middleware/requestid"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/storage"
)

// @title Recruitment API
// @version 1.0.0
// @description Applicant tracking service: job postings, application funnel, audit trail.
// @BasePath /api/v1
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Stats.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Stats.CacheTTL, logr, true)
		}
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	uploadValidator := upload.NewValidator(cfg.Uploads)

	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	validate := validator.New()

	auditSvc := service.NewAuditService(auditRepo, logr)
	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "ats-api",
	})

	var sender mailer.Sender
	if cfg.Mail.Enabled {
		sender = mailer.NewSMTPSender(cfg.Mail)
	}
	notifySvc := service.NewNotificationService(sender, metrics, logr, cfg.Mail.Enabled)

	mailQueue := jobs.NewQueue("notifications", notifySvc.Dispatch, jobs.QueueConfig{
		Workers:    cfg.Mail.Workers,
		BufferSize: cfg.Mail.QueueSize,
		MaxRetries: cfg.Mail.MaxRetries,
		RetryDelay: cfg.Mail.RetryDelay,
		Logger:     logr,
	})

	jobSvc := service.NewJobService(jobRepo, auditSvc, cacheSvc, validate, logr)
	appSvc := service.NewApplicationService(appRepo, jobRepo, userRepo, auditSvc, cacheSvc, metrics, validate, uploadValidator, store, mailQueue, logr)
	statsSvc := service.NewStatsService(appRepo, cacheSvc, cfg.Stats.CacheTTL, logr)
	exportSvc := service.NewExportService(appRepo, jobRepo, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Jobs:         handler.NewJobHandler(jobSvc),
		Applications: handler.NewApplicationHandler(appSvc, statsSvc, exportSvc, store, signer),
		Audit:        handler.NewAuditHandler(auditSvc),
		Metrics:      handler.NewMetricsHandler(metrics),
		AuthService:  authSvc,
		AuditService: auditSvc,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
