package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/civic-desk-api/api/swagger"
	"github.com/noah-isme/civic-desk-api/internal/authz"
	"github.com/noah-isme/civic-desk-api/internal/handler"
	"github.com/noah-isme/civic-desk-api/internal/repository"
	"github.com/noah-isme/civic-desk-api/internal/service"
	"github.com/noah-isme/civic-desk-api/pkg/cache"
	"github.com/noah-isme/civic-desk-api/pkg/config"
	"github.com/noah-isme/civic-desk-api/pkg/database"
	"github.com/noah-isme/civic-desk-api/pkg/jobs"
	"github.com/noah-isme/civic-desk-api/pkg/logger"
	"github.com/noah-isme/civic-desk-api/pkg/mailer"
	"github.com/noah-isme/civic-desk-api/pkg/storage"
	"github.com/noah-isme/civic-desk-api/pkg/validation"
)

const shutdownTimeout = 15 * time.Second

// @title Civic Desk API
// @version 1.0.0
// @description Citizen service requests, their status lifecycle and notifications.
// @BasePath /api
// @schemes http https
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	production := cfg.Env == config.EnvProduction
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.MigrateOnStart {
		if err := database.MigrateUp(cfg.Database.URL, logr); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache and token denylist", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	transitions, err := authz.NewTransitions(cfg.Requests.Transitions)
	if err != nil {
		return err
	}
	policy := authz.DefaultPolicy()
	validate := validation.New()
	metrics := service.NewMetricsService()

	mail, err := mailer.New(cfg.Mail, logr)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	objects, err := newObjectStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	historyRepo := repository.NewRequestHistoryRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	identity := service.NewLocalIdentityStore(repository.NewIdentityRepository(db), cacheRepo, service.IdentityConfig{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  cfg.JWT.Expiration,
		RefreshTTL: cfg.JWT.RefreshExpiration,
		Issuer:     cfg.JWT.Issuer,
	}, logr)
	gate := service.NewAuthGate(identity, userRepo, logr)

	dispatcher := service.NewNotificationDispatcher(requestRepo, userRepo, notificationRepo, mail, metrics, logr)
	queue := jobs.NewQueue("notifications", dispatcher.Handle, jobs.QueueConfig{
		Workers:      cfg.Notifications.Workers,
		BufferSize:   cfg.Notifications.BufferSize,
		MaxRetries:   cfg.Notifications.MaxRetries,
		RetryDelay:   cfg.Notifications.RetryDelay,
		DrainTimeout: cfg.Notifications.DrainTimeout,
		Logger:       logr,
		OnDrop: func(job jobs.Job, err error) {
			dispatcher.OnDrop(job, err)
			metrics.JobDropped(job.Type)
		},
	})
	metrics.ObserveQueueDepth("notifications", queue.Pending)
	queue.Start(context.Background())
	defer queue.Stop()

	cacheSvc := service.NewCacheService(cacheRepo, metrics, 0, logr, redisClient != nil)
	requestSvc := service.NewRequestService(requestRepo, historyRepo, categoryRepo, queue, policy, transitions, validate, logr)
	exportSvc := service.NewExportService(requestRepo, categoryRepo, requestSvc, policy, service.ExportConfig{MaxRows: cfg.Requests.ExportMaxRows}, logr, nil)
	attachmentSvc := service.NewAttachmentService(attachmentRepo, requestRepo, objects,
		storage.NewSignedURLSigner(cfg.Attachments.SignedURLSecret, cfg.Attachments.SignedURLTTL), policy,
		service.AttachmentConfig{
			APIPrefix:    cfg.APIPrefix,
			MaxSizeBytes: cfg.Attachments.MaxFileSizeBytes,
			AllowedMIMEs: cfg.Attachments.AllowedMIMEs,
		}, logr)

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		Production:     production,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     !production,
	}, gate, metrics, handler.Handlers{
		Auth:          handler.NewAuthHandler(service.NewAuthService(identity, userRepo, validate, logr, service.AuthConfig{AllowSelfAssignedRole: cfg.Auth.AllowSelfAssignedRole})),
		Requests:      handler.NewRequestHandler(requestSvc, exportSvc),
		Attachments:   handler.NewAttachmentHandler(attachmentSvc),
		Categories:    handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, cacheSvc, policy, validate, logr)),
		Assignments:   handler.NewAssignmentHandler(service.NewAssignmentService(assignmentRepo, requestRepo, userRepo, queue, policy, validate, logr)),
		Notifications: handler.NewNotificationHandler(service.NewNotificationService(notificationRepo, logr)),
		Users:         handler.NewUserHandler(service.NewUserService(userRepo, policy, validate, logr)),
		Ops:           handler.NewMetricsHandler(metrics, db),
	}, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	queue.Stop()
	return err
}

func newObjectStorage(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStorage, error) {
	if cfg.Driver == config.StorageDriverMinIO {
		return storage.NewMinIOStorage(ctx, cfg)
	}
	return storage.NewLocalStorage(cfg.Dir)
}
