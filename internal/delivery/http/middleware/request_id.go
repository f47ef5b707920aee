package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id for log correlation. A caller's
// own id is honored so a translation that spans submit and poll requests
// can be traced under one id; otherwise a fresh UUIDv7 is minted, which
// keeps the ids time-sortable in log output.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			generated, _ := uuid.NewV7()
			id = generated.String()
		}

		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
