package handler

import (
	"errors"
	"net/http"
	"strings"

	"voicenote-service/internal/models"
	"voicenote-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(sessions *service.SessionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer <token>"})
			return
		}

		claims, err := sessions.Validate(parts[1])
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			case errors.Is(err, service.ErrTokenRevoked), errors.Is(err, models.ErrNotSignedIn):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
			default:
				logger.Debug("Invalid JWT token", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *models.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*models.Claims); ok {
			return claims
		}
	}
	return nil
}
