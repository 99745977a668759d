package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/docs-platform-api/internal/handler"
	"github.com/noah-isme/docs-platform-api/internal/middleware"
	"github.com/noah-isme/docs-platform-api/pkg/config"
	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
	"github.com/noah-isme/docs-platform-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/docs-platform-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/docs-platform-api/pkg/middleware/requestid"
	"github.com/noah-isme/docs-platform-api/pkg/response"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

// Dependencies groups everything the router needs.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Authorizer middleware.Authorizer
	Metrics    middleware.RequestObserver

	Auth      *handler.AuthHandler
	Documents *handler.DocumentHandler
	Modules   *handler.ModuleHandler
	System    *handler.SystemHandler
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logr.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		response.Error(c, appErrors.ErrInternal)
		c.Abort()
	}))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Not Found"))
	})

	r.GET("/", deps.System.Root)
	r.GET("/health", deps.System.Health)
	r.GET("/ready", deps.System.Ready)
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, deps.System.Prometheus)
	}
	if cfg.Swagger.Enabled && cfg.Env != config.EnvProduction {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAdmin := middleware.JWT(deps.Authorizer)

	r.GET("/docs", deps.Documents.List)
	r.GET("/docs/:id", deps.Documents.Get)

	admin := r.Group("/admin")
	admin.POST("/login", deps.Auth.Login)

	adminDocs := admin.Group("/docs", requireAdmin)
	adminDocs.POST("", deps.Documents.Create)
	adminDocs.PUT("/:id", deps.Documents.Update)
	adminDocs.DELETE("/:id", deps.Documents.Delete)

	modules := r.Group("/modules")
	modules.GET("", deps.Modules.List)
	modules.GET("/:id", deps.Modules.Get)

	moduleWrites := modules.Group("")
	if cfg.Auth.ProtectModules {
		moduleWrites.Use(requireAdmin)
	}
	moduleWrites.POST("", deps.Modules.Create)
	moduleWrites.PUT("/:id", deps.Modules.Update)
	moduleWrites.DELETE("/:id", deps.Modules.Delete)

	return r
}

// NewHTTPServer wraps the router in a server with conservative timeouts.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
