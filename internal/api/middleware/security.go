package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders hardening headers for the JSON API. Responses carry teachers'
// personal timesheets, so nothing is cached by browsers or proxies.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; sandbox")
		h.Set("Cache-Control", "no-store")
		h.Set("Pragma", "no-cache")

		c.Next()
	}
}
