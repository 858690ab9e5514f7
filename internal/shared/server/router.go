package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cvprofile-backend/internal/cvs"
	"cvprofile-backend/internal/shared/config"
	"cvprofile-backend/internal/shared/metrics"
	"cvprofile-backend/internal/shared/server/middleware"
	"cvprofile-backend/internal/shared/server/respond"
	"cvprofile-backend/internal/suggestions"
)

// RouterDeps carries the handlers the router wires up. Construction of the
// services behind them lives in bootstrap.
type RouterDeps struct {
	Config            config.Config
	CVHandler         *cvs.Handler
	SuggestionHandler *suggestions.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	registerMeRoutes(api)

	deps.CVHandler.RegisterRoutes(api)

	// Suggestion generation fans out to the model provider, so it carries a
	// tighter per-user budget than the rest of the API.
	suggestionGroup := api.Group("")
	suggestionGroup.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rule: middleware.RateLimitRule{Rate: 0.5, Burst: 5},
	}))
	deps.SuggestionHandler.RegisterRoutes(suggestionGroup)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
