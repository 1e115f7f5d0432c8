package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/api/middleware"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/config"
)

func setupRateLimitEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	t.Cleanup(rateLimiter.Close)
	r.Use(rateLimiter.Limit())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}

func doRequest(router *gin.Engine, remoteAddr string) int {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterMiddleware_Limit(t *testing.T) {
	router := setupRateLimitEngine(t, &config.Config{RateLimitRefillRate: 1, RateLimitBucketSize: 2})

	assert.Equal(t, http.StatusOK, doRequest(router, "1.2.3.4:12345"))
	assert.Equal(t, http.StatusOK, doRequest(router, "1.2.3.4:12345"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "1.2.3.4:12345"))
}

func TestRateLimiterMiddleware_SeparateClients(t *testing.T) {
	router := setupRateLimitEngine(t, &config.Config{RateLimitRefillRate: 1, RateLimitBucketSize: 1})

	assert.Equal(t, http.StatusOK, doRequest(router, "1.2.3.4:1"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "1.2.3.4:2"))
	assert.Equal(t, http.StatusOK, doRequest(router, "5.6.7.8:1"), "other clients have their own bucket")
}
