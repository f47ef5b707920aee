package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimit rejects oversized request bodies with 413. Submissions here
// are tiny (query parameters or a short speech document), so anything larger
// is a client error, caught before the handler reads a byte.
func BodySizeLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "Request body too large",
			})
			return
		}

		// Content-Length can lie; cap the actual read too.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
