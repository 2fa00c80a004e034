package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"annostat-backend/internal/account"
	googleauth "annostat-backend/internal/auth"
	"annostat-backend/internal/ratings"
	"annostat-backend/internal/shared/config"
	"annostat-backend/internal/shared/metrics"
	"annostat-backend/internal/shared/server/middleware"
	"annostat-backend/internal/shared/server/respond"
	"annostat-backend/internal/summaries"
	"annostat-backend/internal/taxonomy"
	"annostat-backend/internal/usage"
	"annostat-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up. Construction of
// repositories and services happens in bootstrap so tests can inject
// in-memory implementations.
type RouterDeps struct {
	Config           config.Config
	TemplateHandler  *taxonomy.Handler
	DatasetsHandler  *ratings.Handler
	SummariesHandler *summaries.Handler
	UsageHandler     *usage.Handler
	UsersHandler     *users.Handler
	AccountHandler   *account.Handler
	GoogleAuth       *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.TemplateHandler != nil {
		deps.TemplateHandler.RegisterRoutes(api)
	}
	if deps.DatasetsHandler != nil {
		deps.DatasetsHandler.RegisterRoutes(api)
	}
	if deps.SummariesHandler != nil {
		deps.SummariesHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}

	if cfg.Env == "dev" && deps.UsageHandler != nil {
		dev := api.Group("/dev")
		deps.UsageHandler.RegisterDevRoutes(dev)
	}

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
