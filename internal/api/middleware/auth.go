package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/mediagrab/internal/config"
	"github.com/denisAlshanov/mediagrab/internal/services/auth"
	"github.com/denisAlshanov/mediagrab/internal/utils"
)

// APIAuthMiddleware accepts either the configured X-API-Key or a bearer JWT.
// When neither a key nor a JWT secret is configured every request passes.
func APIAuthMiddleware(cfg *config.APIConfig, jwtService *auth.JWTService) gin.HandlerFunc {
	if !cfg.AuthEnabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if cfg.APIKey != "" {
			apiKey := c.GetHeader("X-API-Key")
			if apiKey != "" && subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.APIKey)) == 1 {
				c.Set("auth_method", "api_key")
				c.Next()
				return
			}
		}

		if jwtService != nil && cfg.JWTSecret != "" {
			if token := auth.ExtractTokenFromBearer(c.GetHeader("Authorization")); token != "" {
				claims, err := jwtService.ValidateToken(token)
				if err == nil {
					c.Set("auth_method", "jwt")
					c.Set("subject", claims.Subject)
					c.Next()
					return
				}
				utils.LogWarn(c.Request.Context(), "Rejected bearer token", utils.Fields{"error": err.Error()})
			}
		}

		RespondError(c, utils.NewUnauthorizedError())
	}
}
