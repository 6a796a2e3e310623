package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisstore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/avelins/membergate/internal/infra/config"
	"github.com/avelins/membergate/internal/infra/database"
	"github.com/avelins/membergate/internal/infra/logger"
	redisinfra "github.com/avelins/membergate/internal/infra/redis"
	"github.com/avelins/membergate/internal/infra/security"
	postgresrepo "github.com/avelins/membergate/internal/repository/postgres"
	redisrepo "github.com/avelins/membergate/internal/repository/redis"
	"github.com/avelins/membergate/internal/transport/http/middleware"
	"github.com/avelins/membergate/internal/transport/http/routes"
	"github.com/avelins/membergate/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if cfg.Postgres.Migrate {
		if err := database.Migrate(ctx, database.DSN(cfg.Postgres)); err != nil {
			return nil, fmt.Errorf("migrate schema: %w", err)
		}
		log.Info("schema migrations applied")
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	var (
		redisClient  *redisinfra.Client
		sessionStore sessions.Store
		rateLimiter  *middleware.RateLimiter
	)

	if cfg.Redis.Host != "" {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}

		store, err := redisstore.NewStore(
			10,
			"tcp",
			fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			"",
			cfg.Redis.Password,
			[]byte(cfg.Session.Secret),
		)
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init session store: %w", err)
		}
		sessionStore = store

		limitStore := redisrepo.NewRateLimitRepository(
			redisClient.Client(),
			"membergate:login_attempts",
			cfg.RateLimit.WindowDuration*2,
		)
		rateLimiter = middleware.NewRateLimiter(
			limitStore,
			cfg.RateLimit.LoginMaxAttempts,
			cfg.RateLimit.WindowDuration,
			log,
		)
	} else {
		log.Warn("redis host not configured, falling back to signed-cookie sessions without login throttling")
		sessionStore = cookie.NewStore([]byte(cfg.Session.Secret))
	}

	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.App.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})

	hasher := security.NewBcryptHasher(cfg.Password.BcryptCost)

	validator := security.PermissivePasswordValidator()
	if cfg.Password.StrictRules {
		validator = security.StrictPasswordValidator()
	}

	users := postgresrepo.NewUserRepository(pool)

	authService, err := usecase.NewAuthService(users, hasher, log)
	if err != nil {
		pool.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, fmt.Errorf("init auth service: %w", err)
	}
	registrationService := usecase.NewRegistrationService(users, hasher, validator, log)
	identityService := usecase.NewIdentityService(users)

	deps := routes.Dependencies{
		Config:       cfg,
		Logger:       log,
		SessionStore: sessionStore,
		RateLimiter:  rateLimiter,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Identity:     identityService,
		},
		Database: pool,
	}
	if redisClient != nil {
		deps.Cache = redisClient
	}

	engine := routes.Register(deps)

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting membergate",
		zap.String("address", srv.Addr),
		zap.String("env", a.cfg.App.Env),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("run http server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return <-errCh
}
