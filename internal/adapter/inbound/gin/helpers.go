package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/colorstudio/server/internal/utils/middleware"
	"github.com/colorstudio/server/internal/utils/pagination"
)

// getUserIDFromContext extracts the authenticated user ID from gin context.
// Writes a 401 response and returns false if there is none.
func getUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

// parseIDParam parses a UUID path parameter. Writes a 400 response on failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// limitQuery reads the optional limit query parameter. Zero means the domain default.
func limitQuery(c *gin.Context) int {
	return pagination.ParseLimit(c.Query("limit"))
}
