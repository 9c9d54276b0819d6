package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/logger"
	"github.com/noah-isme/classroom-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the session teacher.
const ContextSessionKey = "currentTeacher"

// SessionResolver turns an access token into the session teacher.
type SessionResolver interface {
	SessionFromToken(ctx context.Context, token string) (*models.SessionTeacher, error)
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

// JWT protects routes by requiring a valid access token of an unlocked teacher.
func JWT(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		session, err := resolver.SessionFromToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Set(logger.SessionEmailKey, session.Email)
		c.Next()
	}
}

// SessionFromContext returns the session teacher stored by JWT.
func SessionFromContext(c *gin.Context) *models.SessionTeacher {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, _ := value.(*models.SessionTeacher)
	return session
}
