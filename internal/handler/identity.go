package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDKey = "auth.user_id"

// RequireIdentityMiddleware trusts the X-User-ID header set by the upstream
// gateway after session validation. This service never sees credentials.
func RequireIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := parseUint64(c.GetHeader("X-User-ID"))
		if id == 0 {
			Error(c, http.StatusUnauthorized, "missing or invalid X-User-ID", nil)
			c.Abort()
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

func authedUserID(c *gin.Context) uint64 {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(uint64)
	return id
}
