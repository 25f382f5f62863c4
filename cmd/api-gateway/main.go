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
	"go.uber.org/zap"

	_ "github.com/campusdocs/doctrack-api/api/swagger"
	"github.com/campusdocs/doctrack-api/internal/handler"
	"github.com/campusdocs/doctrack-api/internal/middleware"
	"github.com/campusdocs/doctrack-api/internal/models"
	"github.com/campusdocs/doctrack-api/internal/repository"
	"github.com/campusdocs/doctrack-api/internal/service"
	"github.com/campusdocs/doctrack-api/pkg/cache"
	"github.com/campusdocs/doctrack-api/pkg/config"
	"github.com/campusdocs/doctrack-api/pkg/database"
	"github.com/campusdocs/doctrack-api/pkg/jobs"
	"github.com/campusdocs/doctrack-api/pkg/logger"
	corsmiddleware "github.com/campusdocs/doctrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusdocs/doctrack-api/pkg/middleware/requestid"
	"github.com/campusdocs/doctrack-api/pkg/storage"
)

// @title DocTrack API
// @version 1.0.0
// @description Document approval tracking for academic workflows
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userRepo := repository.NewUserRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	notificationSvc := service.NewNotificationService(notificationRepo, jobs.QueueConfig{
		Workers:    cfg.Notifications.WorkerConcurrency,
		MaxRetries: cfg.Notifications.WorkerRetries,
	}, logr)
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	attachmentStore, err := storage.NewLocalStorage(cfg.Attachments.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init attachment storage", "error", err)
	}
	cleaner := service.NewStorageCleaner(attachmentStore, logr)
	cleaner.Start(ctx)
	defer cleaner.Stop()

	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheRepo, cfg.Dashboard.CacheTTL, metricsSvc, logr)

	documentSvc := service.NewDocumentService(service.DocumentServiceParams{
		Documents:  documentRepo,
		History:    historyRepo,
		Categories: categoryRepo,
		Users:      userRepo,
		Audit:      userRepo,
		Dispatcher: notificationSvc,
		Cleaner:    cleaner,
		Cache:      dashboardSvc,
		Metrics:    metricsSvc,
		Validator:  validate,
		Logger:     logr,
	})

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "doctrack-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	categorySvc := service.NewCategoryService(categoryRepo, validate, logr)

	if cfg.Archiver.Enabled {
		archiver := service.NewArchiverService(documentRepo, historyRepo, dashboardSvc, service.ArchiverConfig{
			InactivityTTL: cfg.Archiver.InactivityTTL,
			SweepInterval: cfg.Archiver.SweepInterval,
			BatchSize:     cfg.Archiver.BatchSize,
		}, logr)
		archiver.Start(ctx)
		defer archiver.Wait()
	}

	go sampleQueueDepth(ctx, metricsSvc, notificationSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	userHandler := handler.NewUserHandler(userSvc)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.POST("/auth/change-password", authHandler.ChangePassword)
		authed.GET("/auth/me", authHandler.Me)

		docs := authed.Group("/documents")
		{
			docs.POST("", documentHandler.Submit)
			docs.GET("", documentHandler.List)
			docs.GET("/approved", documentHandler.ListApproved)
			docs.GET("/archived", documentHandler.ListArchived)
			docs.GET("/:id", documentHandler.Get)
			docs.GET("/:id/timeline", documentHandler.Timeline)
			docs.POST("/:id/approve", documentHandler.Approve)
			docs.POST("/:id/reject", documentHandler.Reject)
			docs.POST("/:id/forward", documentHandler.Forward)
			docs.PUT("/:id/attachment", documentHandler.ReplaceAttachment)
			docs.DELETE("/:id", documentHandler.Delete)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
			notifications.PATCH("/read-all", notificationHandler.MarkAllRead)
		}

		categories := authed.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.GET("/:id", categoryHandler.Get)
			categories.POST("",
				middleware.RequireRoles(models.RoleSystemAdmin),
				middleware.Audit(userRepo, "CATEGORY_CREATE", "categories"),
				categoryHandler.Create)
		}
		authed.GET("/designations", categoryHandler.ListDesignations)
		authed.POST("/designations",
			middleware.RequireRoles(models.RoleSystemAdmin),
			middleware.Audit(userRepo, "DESIGNATION_CREATE", "designations"),
			categoryHandler.CreateDesignation)

		users := authed.Group("/users")
		users.Use(middleware.RequireRoles(models.RoleSystemAdmin, models.RoleHR))
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.POST("",
				middleware.RequireRoles(models.RoleSystemAdmin),
				middleware.Audit(userRepo, "USER_CREATE", "users"),
				userHandler.Create)
		}

		if cfg.Dashboard.Enabled {
			dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
			authed.GET("/dashboard/summary", dashboardHandler.Summary)
		}

		if cfg.Exports.Enabled {
			exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
			if err != nil {
				logr.Sugar().Fatalw("failed to init export storage", "error", err)
			}
			signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
			exportSvc := service.NewExportService(documentRepo, historyRepo, exportStore, signer, userRepo, logr)
			exportHandler := handler.NewExportHandler(exportSvc)

			authed.POST("/exports/register",
				middleware.RequireRoles(models.RoleRegistrar, models.RolePresident, models.RoleSystemAdmin),
				exportHandler.Generate)
			// Downloads authenticate via the signed token, not a session.
			api.GET("/exports/download", exportHandler.Download)

			go pruneExports(ctx, exportStore, cfg.Exports.SignedURLTTL, logr)
		}
	}

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
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// pruneExports drops generated register files once their signed links have
// expired.
func pruneExports(ctx context.Context, store *storage.LocalStorage, ttl time.Duration, logr *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.CleanupOlderThan(ttl)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
			} else if len(deleted) > 0 {
				logr.Info("pruned expired exports", zap.Int("count", len(deleted)))
			}
		}
	}
}

func sampleQueueDepth(ctx context.Context, m *service.MetricsService, n *service.NotificationService) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SetQueueDepth("notifications", n.QueueDepth())
		}
	}
}
