package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/blogspace/docs"
	"github.com/geocoder89/blogspace/internal/auth"
	"github.com/geocoder89/blogspace/internal/config"
	"github.com/geocoder89/blogspace/internal/credentials"
	"github.com/geocoder89/blogspace/internal/http/handlers"
	"github.com/geocoder89/blogspace/internal/http/middlewares"
	"github.com/geocoder89/blogspace/internal/observability"
	"github.com/geocoder89/blogspace/internal/redisclient"
	"github.com/geocoder89/blogspace/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps are the collaborators the router wires into handlers. Backend is
// required; everything else has a default.
type Deps struct {
	Backend *storage.Backend

	// Credentials defaults to a bcrypt store over Backend.Accounts.
	Credentials handlers.CredentialStore

	// Redis, when set, backs the rate limiter and joins the readiness checks.
	Redis *redisclient.Client

	Registry *prometheus.Registry
	Prom     *observability.Prom

	// Health defaults to pinging Backend and Redis.
	Health *handlers.HealthHandler
}

func NewRouter(log *slog.Logger, deps Deps, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
		deps.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if deps.Prom == nil {
		deps.Prom = observability.NewProm(deps.Registry)
	}
	if deps.Credentials == nil {
		deps.Credentials = credentials.NewStore(deps.Backend.Accounts)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.OTelServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(deps.Prom.GinHandleMiddleware())

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// identity goes on the context before the logger reads it
	r.Use(authMW.Authenticate())
	r.Use(middlewares.RequestLogger(log))

	// health
	h := deps.Health
	if h == nil {
		h = handlers.NewHealthHandler(HealthChecks(deps.Backend, deps.Redis))
	}
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec(docs.OpenAPI))

	// rate limits
	var limitStore middlewares.LimitStore = middlewares.NewMemoryLimitStore()
	if deps.Redis != nil {
		limitStore = middlewares.NewRedisLimitStore(deps.Redis)
	}
	loginLimiter := middlewares.NewRateLimiter(limitStore, "auth", cfg.LoginRateLimit, time.Minute, deps.Prom, log)
	writeLimiter := middlewares.NewRateLimiter(limitStore, "writes", cfg.WriteRateLimit, time.Minute, deps.Prom, log)

	writes := r.Group("/")
	writes.Use(middlewares.RequireJSON(), middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	accountsHandler := handlers.NewAccountsHandler(deps.Credentials, jwtManager, int64(cfg.AccessTTL().Seconds()), deps.Prom)

	writes.POST("/accounts", loginLimiter.Middleware(middlewares.KeyByIP), accountsHandler.Register)
	writes.POST("/auth/login", loginLimiter.Middleware(middlewares.KeyByIP), accountsHandler.Login)
	r.GET("/accounts/me", authMW.RequireAuth(), accountsHandler.Me)

	postsHandler := handlers.NewPostsHandler(deps.Backend.Posts)

	r.GET("/posts", postsHandler.ListPosts)
	r.GET("/posts/:id", postsHandler.GetPost)
	writes.POST("/posts", writeLimiter.Middleware(middlewares.KeyByUserOrIP), postsHandler.CreatePost)
	r.PUT("/posts/:id",
		handlers.RequirePostID,
		middlewares.RequireJSON(), middlewares.MaxBodyBytes(cfg.MaxBodyBytes),
		writeLimiter.Middleware(middlewares.KeyByUserOrIP),
		postsHandler.UpdatePost,
	)
	r.DELETE("/posts/:id", writeLimiter.Middleware(middlewares.KeyByUserOrIP), postsHandler.DeletePost)

	return r
}

func HealthChecks(backend *storage.Backend, redis *redisclient.Client) map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{
		"storage": backend.Ping,
	}
	if redis != nil {
		checks["redis"] = redis.Ping
	}
	return checks
}
