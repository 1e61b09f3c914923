package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/placement-portal-api/api/swagger"
	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/handler"
	internalmiddleware "github.com/noah-isme/placement-portal-api/internal/middleware"
	"github.com/noah-isme/placement-portal-api/internal/repository"
	"github.com/noah-isme/placement-portal-api/internal/service"
	"github.com/noah-isme/placement-portal-api/pkg/cache"
	"github.com/noah-isme/placement-portal-api/pkg/catalog"
	"github.com/noah-isme/placement-portal-api/pkg/config"
	"github.com/noah-isme/placement-portal-api/pkg/database"
	"github.com/noah-isme/placement-portal-api/pkg/jobs"
	"github.com/noah-isme/placement-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/placement-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/placement-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/placement-portal-api/pkg/storage"
	"github.com/noah-isme/placement-portal-api/pkg/upload"
)

// @title Placement Portal API
// @version 1.0.0
// @description Placement opportunities, discussion threads and milestone calendars for students and the placement team.
// @BasePath /api/v1
// @schemes http https

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			logr.Info("migrations applied", zap.Strings("versions", applied))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis, cfg.Cache)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	validate, err := dto.NewValidator(cat)
	if err != nil {
		return err
	}

	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, redisClient != nil)

	studentRepo := repository.NewStudentRepository(db)
	teamRepo := repository.NewTeamMemberRepository(db)
	postRepo := repository.NewPostRepository(db, cat.Milestones)
	discussionRepo := repository.NewDiscussionRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	exportRepo := repository.NewExportJobRepository(db)

	authSvc := service.NewAuthService(studentRepo, teamRepo, validate, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		Expiry:             cfg.JWT.Expiration,
		Issuer:             cfg.JWT.Issuer,
		AllowedEmailDomain: cfg.Auth.AllowedEmailDomain,
	})

	var profileSvc *service.ProfileService
	if cfg.Uploads.Enabled() {
		uploader, err := upload.NewCloudinaryUploader(cfg.Uploads)
		if err != nil {
			return err
		}
		profileSvc = service.NewProfileService(studentRepo, teamRepo, uploader, validate, logr)
	} else {
		logr.Info("cloudinary not configured, profile picture uploads disabled")
		profileSvc = service.NewProfileService(studentRepo, teamRepo, nil, validate, logr)
	}

	calendarSvc := service.NewCalendarSyncService(db, calendarRepo, postRepo, cat.Milestones, cacheSvc, metrics, logr)
	discussionSvc := service.NewDiscussionService(postRepo, discussionRepo, notificationRepo, metrics, logr)
	postSvc := service.NewPostService(db, postRepo, studentRepo, calendarSvc, discussionSvc, teamRepo, cat, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	catalogSvc := service.NewCatalogService(cat, cacheSvc)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return err
	}
	exportSvc := service.NewCalendarExportService(
		exportRepo,
		calendarSvc,
		exportStore,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		validate,
		metrics,
		logr,
		service.CalendarExportConfig{
			APIPrefix:       cfg.APIPrefix,
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
		},
	)
	if cfg.Exports.Enabled {
		queue := jobs.NewQueue("calendar-exports", exportSvc.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			RetryDelay: 2 * time.Second,
			Logger:     logr,
			OnGiveUp:   exportSvc.GiveUp,
		})
		queue.Start(ctx)
		defer queue.Stop()
		exportSvc.SetQueue(queue)
		exportSvc.RecoverPendingJobs(ctx)
		exportSvc.StartCleanup(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics", "/metrics/summary"))

	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
		"database": db.PingContext,
		"cache":    cacheRepo.Ping,
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Snapshot)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth: handler.NewAuthHandler(authSvc, handler.SessionCookie{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Env == config.EnvProduction,
			MaxAge: cfg.JWT.Expiration,
		}),
		Profile:       handler.NewProfileHandler(profileSvc),
		Catalog:       handler.NewCatalogHandler(catalogSvc),
		Posts:         handler.NewPostHandler(postSvc),
		Discussion:    handler.NewDiscussionHandler(discussionSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Calendar:      handler.NewCalendarHandler(calendarSvc),
		Exports:       handler.NewExportHandler(exportSvc),
	}, internalmiddleware.JWT(authSvc, cfg.Auth.CookieName))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
