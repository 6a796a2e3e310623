package routes

import (
	"context"
	"html/template"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/avelins/membergate/internal/infra/config"
	"github.com/avelins/membergate/internal/transport/http/handlers"
	"github.com/avelins/membergate/internal/transport/http/middleware"
	"github.com/avelins/membergate/internal/usecase"
	"github.com/avelins/membergate/web"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Identity     *usecase.IdentityService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config       *config.AppConfig
	Logger       *zap.Logger
	SessionStore sessions.Store
	RateLimiter  *middleware.RateLimiter
	Services     ServiceSet
	Database     DatabaseChecker
	Cache        CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if metrics, err := middleware.NewHTTPMetrics(nil); err == nil {
		r.Use(metrics.Handler())
	} else {
		deps.Logger.Warn("metrics disabled", zap.Error(err))
	}

	r.SetHTMLTemplate(template.Must(template.ParseFS(web.Templates, "templates/*.tmpl")))

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Everything below carries a session and a per-request resolved
	// identity; the health and metrics endpoints above do not need one.
	pages := r.Group("")
	pages.Use(sessions.Sessions(deps.Config.Session.CookieName, deps.SessionStore))
	pages.Use(middleware.CurrentUser(deps.Services.Identity, deps.Logger))

	pagesHandler := handlers.NewPagesHandler()
	authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.Identity, deps.Logger)
	registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration, deps.Logger)

	pages.GET("/", middleware.RequireAuthenticated(), pagesHandler.Home)

	pages.GET("/login", middleware.RequireAnonymous(), authHandler.LoginForm)
	if deps.RateLimiter != nil {
		pages.POST("/login", middleware.RequireAnonymous(), deps.RateLimiter.Handler(), authHandler.Login)
	} else {
		pages.POST("/login", middleware.RequireAnonymous(), authHandler.Login)
	}
	pages.GET("/logout", authHandler.Logout)

	pages.GET("/register", middleware.RequireAnonymous(), registrationHandler.Form)
	pages.POST("/register", middleware.RequireAnonymous(), registrationHandler.Submit)

	return r
}
