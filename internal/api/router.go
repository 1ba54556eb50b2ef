package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/happythoughts/internal/middleware"
	"github.com/lalith-99/happythoughts/internal/service"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps is everything NewRouter mounts.
type RouterDeps struct {
	Logger      *zap.Logger
	CORSOrigins []string
	Resolver    *service.Resolver
	Messages    *MessageHandler
	Users       *UserHandler
	Health      Pinger
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Logger), gin.Recovery(), cors.New(corsConfig(d.CORSOrigins)))

	optional := middleware.OptionalAuth(d.Resolver, d.Logger)
	required := middleware.RequireAuth(d.Resolver, d.Logger)

	messages := r.Group("/messages")
	messages.GET("", d.Messages.List)
	messages.GET("/:id", d.Messages.GetByID)
	messages.POST("", optional, d.Messages.Create)
	messages.PATCH("/:id/like", d.Messages.Like)
	messages.DELETE("/:id", required, d.Messages.Delete)

	users := r.Group("/users")
	users.POST("", d.Users.Register)
	users.POST("/login", d.Users.Login)
	users.GET("/me", required, d.Users.Me)

	r.GET("/health", healthHandler(d.Health, d.Logger))
	r.GET("/", endpointsHandler(r))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", HeaderClientID}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func healthHandler(p Pinger, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

type endpoint struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
}

// endpointsHandler lists every registered route, grouped by path. The list
// is read per request so it includes routes added after this handler.
func endpointsHandler(r *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		byPath := make(map[string][]string)
		var paths []string
		for _, route := range r.Routes() {
			if _, seen := byPath[route.Path]; !seen {
				paths = append(paths, route.Path)
			}
			byPath[route.Path] = append(byPath[route.Path], route.Method)
		}
		slices.Sort(paths)

		out := make([]endpoint, 0, len(paths))
		for _, p := range paths {
			methods := byPath[p]
			slices.Sort(methods)
			out = append(out, endpoint{Path: p, Methods: methods})
		}
		c.JSON(http.StatusOK, gin.H{"endpoints": out})
	}
}
