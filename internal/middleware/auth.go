package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/services"
	"github.com/temcen/myndreader/pkg/models"
)

const (
	ContextClientID   = "client_id"
	ContextClientTier = "client_tier"
)

// Authenticator checks bearer credentials.
type Authenticator interface {
	ValidateToken(ctx context.Context, token string) (*models.JWTClaims, error)
	ValidateAPIKey(apiKey string) (string, error)
}

// Auth accepts either a JWT from POST /auth/token or a raw API key as the
// bearer credential, and stores the client id and tier on the context.
func Auth(authenticator Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "MISSING_AUTHORIZATION", "Authorization header is required")
			return
		}

		tokenParts := strings.Fields(authHeader)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
			abortUnauthorized(c, "INVALID_AUTHORIZATION_FORMAT", "Authorization header must be in format 'Bearer <token>'")
			return
		}
		credential := tokenParts[1]

		// JWTs always carry dots, API keys never do.
		if !strings.Contains(credential, ".") {
			tier, err := authenticator.ValidateAPIKey(credential)
			if err != nil {
				logger.WithError(err).Warn("Invalid API key")
				abortUnauthorized(c, "INVALID_API_KEY", "Invalid API key")
				return
			}
			c.Set(ContextClientID, services.ClientIDForKey(credential))
			c.Set(ContextClientTier, tier)
			c.Next()
			return
		}

		claims, err := authenticator.ValidateToken(c.Request.Context(), credential)
		if err != nil {
			logger.WithError(err).Warn("Invalid JWT token")
			abortUnauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ContextClientID, claims.ClientID)
		c.Set(ContextClientTier, claims.ClientTier)
		c.Next()
	}
}

// ClientFromContext returns the authenticated client id and tier. Requests
// that skipped authentication are anonymous free-tier clients.
func ClientFromContext(c *gin.Context) (string, string) {
	clientID := c.GetString(ContextClientID)
	if clientID == "" {
		clientID = "anonymous:" + c.ClientIP()
	}
	tier := c.GetString(ContextClientTier)
	if tier == "" {
		tier = "free"
	}
	return clientID, tier
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
