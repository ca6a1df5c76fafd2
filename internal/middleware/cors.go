package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// CORS answers cross-origin requests from the front ends listed in origenes.
// A "*" entry (the development default) allows any origin. Requests from an
// origin outside the list get no Allow-Origin header, so browsers block them.
func CORS(origenes []string) gin.HandlerFunc {
	comodin := len(origenes) == 0 || slices.Contains(origenes, "*")
	return func(c *gin.Context) {
		origen := c.GetHeader("Origin")
		switch {
		case comodin:
			c.Header("Access-Control-Allow-Origin", "*")
		case origen != "" && slices.Contains(origenes, origen):
			c.Header("Access-Control-Allow-Origin", origen)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID, X-Notify-Secret")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
