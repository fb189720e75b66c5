package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)

	var captured string
	router := gin.New()
	router.Use(TraceID())
	router.GET("/", func(c *gin.Context) {
		captured = GetTraceID(c)
		c.Status(http.StatusOK)
	})
	return router, &captured
}

func TestTraceID_MintsWhenAbsent(t *testing.T) {
	router, captured := traceRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, *captured)
	assert.Equal(t, *captured, w.Header().Get(TraceIDHeader))
}

func TestTraceID_HonorsIncomingHeader(t *testing.T) {
	router, captured := traceRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "caller-supplied-id")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "caller-supplied-id", *captured)
	assert.Equal(t, "caller-supplied-id", w.Header().Get(TraceIDHeader))
}

func TestGetTraceID_EmptyWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetTraceID(c))
}
