package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/freightdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a limiter whose clock only moves when advance is called.
func fixedClock(perSecond float64, burst int) (*RateLimiter, func(time.Duration)) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	rl := NewRateLimiter(perSecond, burst)
	rl.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	return rl, func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}
}

func TestRateLimiter(t *testing.T) {
	t.Run("burst then block", func(t *testing.T) {
		rl, _ := fixedClock(1, 3)
		for i := range 3 {
			assert.True(t, rl.Allow("10.0.0.1"), "request %d", i+1)
		}
		assert.False(t, rl.Allow("10.0.0.1"))
	})

	t.Run("separate buckets per client", func(t *testing.T) {
		rl, _ := fixedClock(1, 1)
		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))
	})

	t.Run("refills over time", func(t *testing.T) {
		rl, advance := fixedClock(2, 1)
		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		advance(500 * time.Millisecond)
		assert.True(t, rl.Allow("a"))
	})

	t.Run("idle clients are swept", func(t *testing.T) {
		rl, advance := fixedClock(1, 1)
		rl.Allow("a")
		advance(clientIdleTTL + time.Second)
		rl.Allow("b")

		rl.mu.Lock()
		defer rl.mu.Unlock()
		assert.NotContains(t, rl.clients, "a")
		assert.Contains(t, rl.clients, "b")
	})

	t.Run("burst below one is raised", func(t *testing.T) {
		rl, _ := fixedClock(1, 0)
		assert.True(t, rl.Allow("a"))
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		rl, _ := fixedClock(1, 100)
		var wg sync.WaitGroup
		var allowed atomic.Int32
		for range 150 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if rl.Allow("same") {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(100), allowed.Load())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, _ := fixedClock(1, 2)
	router := gin.New()
	router.Use(RequestID(), RateLimit(rl))
	router.POST("/api/v1/shipments/wms-orders", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shipments/wms-orders", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)

	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRateLimited, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}
