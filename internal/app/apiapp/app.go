package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skipdm/edworking/internal/config"
	s3infra "github.com/skipdm/edworking/internal/infra/s3"
	pgrepo "github.com/skipdm/edworking/internal/repo/postgres"
	redrepo "github.com/skipdm/edworking/internal/repo/redis"
	authsvc "github.com/skipdm/edworking/internal/services/auth"
	connsvc "github.com/skipdm/edworking/internal/services/connections"
	feedsvc "github.com/skipdm/edworking/internal/services/feed"
	mediasvc "github.com/skipdm/edworking/internal/services/media"
	postssvc "github.com/skipdm/edworking/internal/services/posts"
	profilesvc "github.com/skipdm/edworking/internal/services/profiles"
	ratesvc "github.com/skipdm/edworking/internal/services/rate"
	swipesvc "github.com/skipdm/edworking/internal/services/swipes"
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
		if err := pgrepo.Migrate(ctx, pool); err != nil {
			log.Warn("postgres migration failed", zap.Error(err))
		}
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	mirrorRepo := redrepo.NewMirrorRepo(redisClient, cfg.Cache.MirrorTTL)
	userRepo := pgrepo.NewUserRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	postRepo := pgrepo.NewPostRepo(pool)

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
	authService := authsvc.NewService(jwtManager, userRepo, sessionRepo, cfg.Auth.RefreshTTL)

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(mediaStorage)

	profileService := profilesvc.NewService(profilesvc.Dependencies{
		Users:   userRepo,
		Mirror:  mirrorRepo,
		Avatars: mediaService,
		Logger:  log,
	})
	postService := postssvc.NewService(postssvc.Dependencies{
		Store:     postRepo,
		Mirror:    mirrorRepo,
		Directory: profileService,
		Logger:    log,
	})
	feedService := feedsvc.NewService(feedsvc.Dependencies{
		Directory: profileService,
		Swipes:    swipeRepo,
		Mirror:    mirrorRepo,
		Avatars:   mediaService,
		Logger:    log,
	})
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Limits.SwipesPerMinute, cfg.Limits.SwipesPer10Sec)
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Store: swipeRepo,
		Tx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		Deck:      feedService,
		Limiter:   rateLimiter,
		Directory: profileService,
		Mirror:    mirrorRepo,
		Logger:    log,
	})
	connectionsService := connsvc.NewService(connsvc.Dependencies{
		Directory: profileService,
		Posts:     postService,
		Swipes:    swipeRepo,
		Mirror:    mirrorRepo,
		Avatars:   mediaService,
		Logger:    log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:        authService,
		ProfileService:     profileService,
		MediaService:       mediaService,
		PostService:        postService,
		FeedService:        feedService,
		SwipeService:       swipeService,
		ConnectionsService: connectionsService,
		Logger:             log,
		Config:             cfg,
	})

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
