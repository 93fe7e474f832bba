package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bunkmate/bunkmate-backend/internal/config"
	"github.com/bunkmate/bunkmate-backend/internal/database"
	"github.com/bunkmate/bunkmate-backend/internal/handler"
	"github.com/bunkmate/bunkmate-backend/internal/metrics"
	"github.com/bunkmate/bunkmate-backend/internal/middleware"
	"github.com/bunkmate/bunkmate-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Subject *handler.SubjectHandler
	Friend  *handler.FriendHandler
	WS      *handler.WSHandler
}

// Deps are the cross-cutting pieces the router wires into middleware.
type Deps struct {
	Auth        middleware.Authenticator
	Metrics     *metrics.Metrics // nil disables /metrics
	AuthLimiter *middleware.RateLimiter
	Health      func(ctx context.Context) database.Health
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(cfg *config.Config, deps Deps, handlers *Handlers) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", deps.Metrics.Handler())
	}

	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		MinLength: cfg.CompressionMinBytes,
		Skipper: func(c *gin.Context) bool {
			return strings.HasPrefix(c.Request.URL.Path, "/metrics")
		},
	}))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			response.Success(c, http.StatusOK, gin.H{"status": "ok"})
			return
		}
		h := deps.Health(c.Request.Context())
		status, code := "ok", http.StatusOK
		if !h.OK() {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		response.Success(c, code, gin.H{"status": status, "checks": h})
	})

	requireAuth := []gin.HandlerFunc{
		middleware.RequireAuth(deps.Auth),
		middleware.RequireActiveSession(deps.Auth),
	}

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		public := auth.Group("")
		if deps.AuthLimiter != nil {
			public.Use(deps.AuthLimiter.Middleware())
		}
		public.POST("/signup", handlers.Auth.SignUp)
		public.POST("/signin", handlers.Auth.SignIn)

		private := auth.Group("", requireAuth...)
		private.POST("/signout", handlers.Auth.SignOut)
		private.GET("/me", handlers.Auth.Me)
	}

	// ─── 1. Authenticated API ──────────────────────────────────────────
	api := router.Group("/api/v1", append(requireAuth, middleware.NoStore())...)
	{
		subjects := api.Group("/subjects")
		subjects.GET("", handlers.Subject.List)
		subjects.POST("", handlers.Subject.Create)
		subjects.PUT("/:id", handlers.Subject.Update)
		subjects.DELETE("/:id", handlers.Subject.Delete)
		subjects.POST("/:id/attended", handlers.Subject.MarkAttended)
		subjects.POST("/:id/missed", handlers.Subject.MarkMissed)
		subjects.GET("/:id/history", handlers.Subject.History)

		friends := api.Group("/friends")
		friends.GET("", handlers.Friend.List)
		friends.POST("", handlers.Friend.Add)
		friends.PUT("/:id", handlers.Friend.Rename)
		friends.DELETE("/:id", handlers.Friend.Remove)
		friends.GET("/:id/subjects", handlers.Friend.Subjects)
	}

	// ─── 2. WebSocket (token in query) ─────────────────────────────────
	ws := router.Group("/ws/v1", requireAuth...)
	ws.GET("/notifications", handlers.WS.NotificationStream)

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router
}
