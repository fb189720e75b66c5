package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDHeader carries the correlation ID. Incoming values are honored
	// so callers can correlate across services.
	TraceIDHeader = "X-Trace-ID"

	traceIDKey = "trace_id"
)

// TraceID tags every request with a correlation ID, minting one when the
// caller did not supply it, and echoes it back in the response.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TraceIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(traceIDKey, id)
		c.Header(TraceIDHeader, id)
		c.Next()
	}
}

// GetTraceID returns the request's correlation ID, or an empty string when
// the middleware did not run.
func GetTraceID(c *gin.Context) string {
	return c.GetString(traceIDKey)
}
