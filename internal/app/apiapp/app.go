package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MichaelMishaev/netanyaLife-sub002/internal/config"
	s3infra "github.com/MichaelMishaev/netanyaLife-sub002/internal/infra/s3"
	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
	redrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/redis"
	analyticsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/analytics"
	authsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/auth"
	dirsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/directory"
	geosvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/geo"
	mediasvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/media"
	modsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/moderation"
	ownerssvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/owners"
	ratesvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/rate"
	reviewsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/reviews"
	subsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/submissions"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	cacheRepo := redrepo.NewCacheRepo(redisClient)

	txManager := pgrepo.NewTxManager(pool)
	businessRepo := pgrepo.NewBusinessRepo(pool)
	pendingBusinessRepo := pgrepo.NewPendingBusinessRepo(pool)
	pendingEditRepo := pgrepo.NewPendingEditRepo(pool)
	ownerRepo := pgrepo.NewOwnerRepo(pool)
	adminRepo := pgrepo.NewAdminRepo(pool)
	lookupRepo := pgrepo.NewLookupRepo(pool)
	reviewRepo := pgrepo.NewReviewRepo(pool)
	photoRepo := pgrepo.NewPhotoRepo(pool)
	eventRepo := pgrepo.NewEventRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, ownerRepo, adminRepo, cfg.Auth.RefreshTTL)
	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(photoRepo, businessRepo, mediaStorage, cfg.Directory.MaxPhotosPerListing)
	directoryService := dirsvc.NewService(businessRepo, lookupRepo, reviewRepo, mediaService, cfg.Directory.PageSize, cfg.Directory.MaxPageSize)
	geoService := geosvc.NewService(lookupRepo)
	submissionService := subsvc.NewService(pendingBusinessRepo, pendingEditRepo, businessRepo, lookupRepo, eventRepo, log)
	moderationService := modsvc.NewService(
		txManager,
		pendingBusinessRepo,
		pendingEditRepo,
		businessRepo,
		lookupRepo,
		ownerRepo,
		eventRepo,
		cacheRepo,
		cfg.Directory.ApproveVisible,
		log,
	)
	ownerService := ownerssvc.NewService(businessRepo, pendingEditRepo, log)
	reviewService := reviewsvc.NewService(reviewRepo, businessRepo, eventRepo, log)
	analyticsService := analyticsvc.NewService(eventRepo, cfg.Limits.EventsMaxBatch, log)
	submitLimiter := ratesvc.NewLimiter(rateRepo, "submit", cfg.Limits.SubmitPerMinute, cfg.Limits.SubmitPer10Seconds)
	reviewLimiter := ratesvc.NewLimiter(rateRepo, "review", cfg.Limits.ReviewPerMinute, cfg.Limits.ReviewPer10Seconds)

	RegisterRoutes(r, Dependencies{
		AuthService:       authService,
		DirectoryService:  directoryService,
		GeoService:        geoService,
		SubmissionService: submissionService,
		ModerationService: moderationService,
		OwnerService:      ownerService,
		MediaService:      mediaService,
		ReviewService:     reviewService,
		AnalyticsService:  analyticsService,
		SubmitLimiter:     submitLimiter,
		ReviewLimiter:     reviewLimiter,
		PageCache:         cacheRepo,
		Logger:            log,
		Config:            cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
