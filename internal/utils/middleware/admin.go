package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/colorstudio/server/internal/shared/errors"
)

// AdminAuthorizer decides which authenticated users may call admin endpoints.
type AdminAuthorizer struct {
	adminUserIDs map[uuid.UUID]struct{}
}

// NewAdminAuthorizer creates an authorizer from a list of user IDs.
// Entries that are not UUIDs are ignored.
func NewAdminAuthorizer(adminUserIDs []string) *AdminAuthorizer {
	set := make(map[uuid.UUID]struct{}, len(adminUserIDs))
	for _, raw := range adminUserIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil || id == uuid.Nil {
			continue
		}
		set[id] = struct{}{}
	}
	return &AdminAuthorizer{adminUserIDs: set}
}

// IsAdmin reports whether userID is an admin.
func (a *AdminAuthorizer) IsAdmin(userID uuid.UUID) bool {
	if a == nil || userID == uuid.Nil {
		return false
	}
	_, ok := a.adminUserIDs[userID]
	return ok
}

// RequireAdmin returns a middleware that rejects non-admin callers.
// Must run after RequireAuth.
func RequireAdmin(a *AdminAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == uuid.Nil {
			abortWithAppError(c, apperrors.Unauthorized("Missing authorization header"))
			return
		}
		if !a.IsAdmin(userID) {
			abortWithAppError(c, apperrors.Forbidden("Admin access required"))
			return
		}
		c.Next()
	}
}
