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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/alumni-portal/api/swagger"
	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/handler"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/live"
	"github.com/noah-isme/alumni-portal/internal/middleware"
	"github.com/noah-isme/alumni-portal/internal/repository"
	"github.com/noah-isme/alumni-portal/internal/service"
	"github.com/noah-isme/alumni-portal/internal/upstream"
	"github.com/noah-isme/alumni-portal/internal/validation"
	"github.com/noah-isme/alumni-portal/pkg/cache"
	"github.com/noah-isme/alumni-portal/pkg/config"
	"github.com/noah-isme/alumni-portal/pkg/database"
	"github.com/noah-isme/alumni-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/alumni-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/alumni-portal/pkg/middleware/requestid"
	"github.com/noah-isme/alumni-portal/pkg/storage"
)

// @title Alumni Portal Gateway
// @version 1.0.0
// @description Permission-gated, paginated views and live list sessions over the alumni API
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	var checks []handler.ReadinessCheck

	var cacheRepo service.CacheRepository
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("redis unavailable", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	} else {
		logr.Info("redis disabled, sessions and drafts are held in memory")
		cacheRepo = repository.NewMemoryCacheRepository()
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Session.CacheTTL, logr, true)

	var db *sqlx.DB
	var audit *service.AuditService
	if cfg.Audit.Enabled {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("database unavailable", "error", err)
		}
		defer db.Close() //nolint:errcheck
		if err := database.Migrate(ctx, db); err != nil {
			logr.Sugar().Fatalw("database migration failed", "error", err)
		}
		checks = append(checks, handler.ReadinessCheck{Name: "database", Check: db.PingContext})

		audit = service.NewAuditService(repository.NewAuditRepository(db), metrics, service.AuditConfig{
			Workers:    cfg.Audit.Workers,
			MaxRetries: cfg.Audit.MaxRetries,
			RetryDelay: cfg.Audit.RetryDelay,
		}, logr)
		audit.Start(context.Background())
	}

	images, files, err := newImageStore(ctx, cfg)
	if err != nil {
		logr.Sugar().Fatalw("media storage unavailable", "error", err)
	}

	remote := upstream.New(cfg.Upstream, logr, metrics)
	sessions := service.NewSessionService(remote, cacheSvc, cfg.Session.CacheTTL, logr)
	notifiers := []dispatch.Notifier{metrics, sessions}
	if audit != nil {
		notifiers = append(notifiers, audit)
	}
	dispatcher := dispatch.New(remote, logr, notifiers...)
	validate := validation.New()
	limits := listing.Limits{Default: cfg.Listing.DefaultLimit, Max: cfg.Listing.MaxLimit}

	registration := service.NewRegistrationService(remote, cacheSvc, cfg.Drafts.TTL, validate, logr)
	media := service.NewMediaService(images, metrics, logr, service.MediaServiceConfig{
		MaxUploadMB:  cfg.Media.MaxUploadMB,
		AllowedMIMEs: cfg.Media.AllowedMIMEs,
	})
	directory := service.NewDirectoryService(remote, dispatcher, logr)
	exports := service.NewExportService(remote, service.ExportConfig{MaxPages: cfg.Exports.MaxPages}, logr, nil, nil)
	profiles := service.NewProfileService(remote, dispatcher, sessions, validate, logr)
	posts := service.NewPostService(remote, dispatcher, logr)
	gallery := service.NewGalleryService(remote, validate, logr)
	events := service.NewEventService(remote, logr)

	routes := handler.Routes{
		Sessions:     sessions,
		Registration: handler.NewRegistrationHandler(registration),
		Media:        handler.NewMediaHandler(media, nil),
		Profiles:     handler.NewProfileHandler(profiles),
		Directory:    handler.NewDirectoryHandler(directory, exports, limits),
		Posts:        handler.NewPostHandler(posts, limits),
		Gallery:      handler.NewGalleryHandler(gallery, limits),
		Events:       handler.NewEventHandler(events, limits),
	}
	if files != nil {
		routes.Media = handler.NewMediaHandler(media, files)
	}
	if audit != nil {
		routes.Audit = handler.NewAuditHandler(audit)
	}
	var liveHandler *handler.LiveHandler
	if cfg.Live.Enabled {
		liveHandler = handler.NewLiveHandler(directory, posts, gallery, live.NewUpgrader(cfg.CORS.AllowedOrigins), live.Options{
			Limits:       limits,
			Debounce:     cfg.Listing.SearchDebounce,
			ReadLimit:    cfg.Live.ReadLimit,
			PingInterval: cfg.Live.PingInterval,
			PongWait:     cfg.Live.PongWait,
			Logger:       logr,
			Hooks:        metrics,
		})
		routes.Live = liveHandler
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics, checks...)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routes.Register(r.Group(cfg.APIPrefix))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	if liveHandler != nil {
		liveHandler.Shutdown()
	}
	if audit != nil {
		audit.Stop()
	}
}

// newImageStore returns the hosting backend and, for local storage, the
// file server behind signed media URLs.
func newImageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, *storage.LocalStorage, error) {
	switch cfg.Media.Backend {
	case config.MediaBackendMinIO:
		store, err := storage.NewMinIOStorage(cfg.Media.MinIO)
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		signer := storage.NewSignedURLSigner(cfg.Media.SignedURLSecret, cfg.Media.SignedURLTTL)
		local, err := storage.NewLocalStorage(cfg.Media.StorageDir, cfg.Media.PublicBaseURL, signer)
		if err != nil {
			return nil, nil, err
		}
		return local, local, nil
	}
}
