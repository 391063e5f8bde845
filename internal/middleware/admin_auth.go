package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatroom-service/internal/settings"
)

// AdminAuth gates admin endpoints behind the runtime admin password. The
// password is read fresh per request so changes apply without a restart.
func AdminAuth(st settings.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader("X-Admin-Password")
		if supplied == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing admin password"})
			return
		}

		current, err := st.AdminPassword(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to verify admin password"})
			return
		}
		if supplied != current {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin password"})
			return
		}

		c.Next()
	}
}
