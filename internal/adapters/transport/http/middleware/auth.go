package middleware

import (
	"context"
	"net/http"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "current_user"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.User, error)
}

// BearerToken extracts <t> from "Bearer <t>". The scheme is case-insensitive.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", customErrors.ErrMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, model.TokenTypeBearer) {
		return "", customErrors.ErrMalformedAuthHeader
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", customErrors.ErrMalformedAuthHeader
	}
	return token, nil
}

// RequireUser rejects the request with 401 unless it carries a token for an existing user.
func RequireUser(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case customErrors.IsUnauthorized(err), customErrors.IsInvalidCredentials(err):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": customErrors.ErrInvalidCredentials.Error()})
			return
		default:
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireUser.
func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}
