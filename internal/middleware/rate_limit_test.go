package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// The redis client points at a closed port, so the limiter's
// fail-open path applies and requests must pass through untouched.
func newLimitedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
	})
	rm := NewRateLimitMiddleware(client)

	r := gin.New()
	r.POST("/auth/register", rm.RateLimit(20, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	r.GET("/me", func(c *gin.Context) {
		c.Set("user_id", "u1")
		c.Next()
	}, rm.RateLimit(20, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRateLimitAllowsAnonymousCallers(t *testing.T) {
	r := newLimitedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("anonymous request was rejected: got %d body %s", w.Code, w.Body.String())
	}
}

func TestRateLimitAllowsAuthenticatedCallers(t *testing.T) {
	r := newLimitedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("authenticated request was rejected: got %d body %s", w.Code, w.Body.String())
	}
}
