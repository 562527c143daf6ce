package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the authenticated user's ID in the
// request context. Using a custom type prevents collisions.
const userIDKey = contextKey("userID")

// orgIDKey is the key used to store the session's active organization id.
const orgIDKey = contextKey("orgID")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if userIDVal := c.Request.Context().Value(userIDKey); userIDVal != nil {
			userID, ok := userIDVal.(string)
			return userID, ok && userID != ""
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetOrgIDFromContext retrieves the session's active organization id.
func GetOrgIDFromContext(c *gin.Context) (string, bool) {
	if orgIDVal := c.Request.Context().Value(orgIDKey); orgIDVal != nil {
		orgID, ok := orgIDVal.(string)
		return orgID, ok && orgID != ""
	}
	return "", false
}

// SetUserIDInContext stores the user id in the Gin context. Pre-auth
// handlers that establish a session (sign-in, OAuth callback) call this so
// downstream hooks can see the newly created session.
func SetUserIDInContext(c *gin.Context, userID string) {
	c.Set(string(userIDKey), userID)
}

// ClearUserFromContext removes the authenticated user id from both the Gin
// context and the request context. The account-deletion handler calls this
// after a successful delete so request hooks running afterwards do not write
// rows for an identity that no longer exists.
func ClearUserFromContext(c *gin.Context) {
	c.Set(string(userIDKey), "")
	ctx := context.WithValue(c.Request.Context(), userIDKey, "")
	c.Request = c.Request.WithContext(ctx)
}
