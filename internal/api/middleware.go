package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medscribe/internal/identity"
	"medscribe/internal/utils"
)

// CORSMiddleware adds CORS headers for the mobile app
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, "+identity.Header)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// identityMiddleware attaches the caller's user id, from the X-User-ID
// header or the user_id query parameter, to the request context.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(identity.Header)
		if raw == "" {
			raw = c.Query(identity.QueryParam)
		}

		owner, err := identity.Parse(raw)
		if err != nil {
			utils.Fail(c, err)
			c.Abort()
			return
		}
		if owner != nil {
			c.Request = c.Request.WithContext(identity.WithUser(c.Request.Context(), owner))
		}
		c.Next()
	}
}
