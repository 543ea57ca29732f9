package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/denisAlshanov/mediagrab/internal/api/handlers"
	"github.com/denisAlshanov/mediagrab/internal/api/middleware"
	"github.com/denisAlshanov/mediagrab/internal/config"
	"github.com/denisAlshanov/mediagrab/internal/services/auth"
	"github.com/denisAlshanov/mediagrab/internal/utils"
)

type Router struct {
	engine *gin.Engine
}

func NewRouter(cfg *config.Config, mediaHandler *handlers.MediaHandler, healthHandler *handlers.HealthHandler, jwtService *auth.JWTService) *Router {
	// Set Gin mode
	if cfg.Server.Host == "0.0.0.0" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.RegisterValidators()

	engine := gin.New()

	engine.Use(middleware.CorrelationIDMiddleware())
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		utils.LogWarn(c.Request.Context(), "Recovered from panic", utils.Fields{"panic": recovered})
		middleware.RespondError(c, utils.NewInternalError())
	}))

	engine.NoRoute(func(c *gin.Context) {
		middleware.RespondError(c, utils.NewEndpointNotFoundError())
	})

	engine.GET("/", healthHandler.Directory)

	// Swagger documentation (no auth required)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group("/api")
	if cfg.CORS.Enabled {
		api.Use(corsMiddleware(&cfg.CORS))
	}
	{
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Readiness)

		media := api.Group("")
		media.Use(middleware.BodyLimitMiddleware(cfg.Server.MaxBodyBytes))
		media.Use(middleware.RateLimitMiddleware(&cfg.API))
		media.Use(middleware.APIAuthMiddleware(&cfg.API, jwtService))
		{
			media.POST("/info", mediaHandler.Info)
			media.POST("/download", mediaHandler.Download)
		}

		// Preflight requests for the media routes are answered by the CORS middleware
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	}

	return &Router{engine: engine}
}

func corsMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Second,
	}

	allowAll := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}

	if allowAll {
		corsConfig.AllowAllOrigins = true
		// Wildcard origins cannot be combined with credentials
		corsConfig.AllowCredentials = false
	} else if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	}

	return cors.New(corsConfig)
}

// Handler returns the router as an http.Handler for use with http.Server
func (r *Router) Handler() http.Handler {
	return r.engine
}
