package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"teaching-hours/backend/pkg/response"
)

// BodyLimit caps request bodies at maxBytes; 0 disables the limit
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "dữ liệu gửi lên quá lớn")
			c.Abort()
			return
		}
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.Writer.Written() {
			return
		}
		var tooLarge *http.MaxBytesError
		for _, err := range c.Errors {
			if errors.As(err.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "dữ liệu gửi lên quá lớn")
				return
			}
		}
	}
}
