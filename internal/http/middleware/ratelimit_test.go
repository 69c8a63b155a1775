package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

func TestRateLimitPerClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/waitlist", RateLimit(logger.NewNop(), nil, 2), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/waitlist", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.7:5000").Code)
	assert.Equal(t, http.StatusOK, send("203.0.113.7:5001").Code)
	limited := send("203.0.113.7:5002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Contains(t, limited.Body.String(), `"code":"rate_limited"`)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("198.51.100.2:5000").Code, "other clients keep their own budget")
}

func TestRateLimitDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RateLimit(nil, nil, 0), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
