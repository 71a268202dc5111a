package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/models"
	"github.com/mx-space/journal/internal/pkg/jwt"
	"github.com/mx-space/journal/internal/pkg/response"
)

const (
	ContextKeyUserID     = "user_id"
	ContextKeyExternalID = "external_id"
	ContextKeyEmail      = "email"
	ContextKeyUser       = "user"
)

// TokenVerifier validates identity-provider bearer tokens.
type TokenVerifier interface {
	Parse(token string) (*jwt.Claims, error)
}

// UserResolver maps an identity-provider subject to an internal user,
// creating the user on first sight.
type UserResolver interface {
	Resolve(ctx context.Context, externalID, email string) (*models.UserModel, error)
}

// Auth rejects requests without a valid identity token and stores the
// resolved internal user on the context.
func Auth(verifier TokenVerifier, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c)
			return
		}
		claims, err := verifier.Parse(token)
		if err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			response.Unauthorized(c)
			return
		}

		user, err := users.Resolve(c.Request.Context(), claims.Subject, claims.Email)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		c.Set(ContextKeyExternalID, claims.Subject)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// CurrentUserID extracts the authenticated internal user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentUser returns the resolved user, or nil on unauthenticated routes.
func CurrentUser(c *gin.Context) *models.UserModel {
	v, _ := c.Get(ContextKeyUser)
	user, _ := v.(*models.UserModel)
	return user
}

func extractToken(c *gin.Context) string {
	return NormalizeToken(c.GetHeader("Authorization"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
