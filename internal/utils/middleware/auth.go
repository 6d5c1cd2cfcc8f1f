package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/colorstudio/server/internal/port/outbound"
	apperrors "github.com/colorstudio/server/internal/shared/errors"
	"github.com/colorstudio/server/internal/utils/requestctx"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID.
	UserIDKey = "user_id"
)

// RequireAuth returns a middleware that requires a valid bearer token
// and stores the caller's user ID in the gin and request contexts.
func RequireAuth(validator outbound.TokenValidatorPort) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			abortWithAppError(c, apperrors.Unauthorized("Missing authorization header"))
			return
		}

		claims, err := validator.ValidateAccessToken(token)
		if err != nil {
			abortWithAppError(c, apperrors.Unauthorized("Invalid or expired token"))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(requestctx.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if len(authHeader) <= len(BearerPrefix) || !strings.EqualFold(authHeader[:len(BearerPrefix)], BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(BearerPrefix):])
}

// GetUserID returns the user ID from context.
// Returns uuid.Nil if not found.
func GetUserID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(UserIDKey); exists {
		if userID, ok := val.(uuid.UUID); ok {
			return userID
		}
	}
	return uuid.Nil
}

// abortWithAppError aborts with the {"error": message} body used by every endpoint.
func abortWithAppError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, err.ToResponse())
}
