package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedHandler(t *testing.T, limit int, window, block time.Duration) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return RateLimiter(rdb, limit, window, block, "test")(ok), mr
}

func doRequest(h http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4567"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	h, _ := newLimitedHandler(t, 3, time.Minute, 10*time.Minute)

	for i := 0; i < 3; i++ {
		rec := doRequest(h)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	h, _ := newLimitedHandler(t, 2, time.Minute, 10*time.Minute)

	assert.Equal(t, http.StatusOK, doRequest(h).Code)
	assert.Equal(t, http.StatusOK, doRequest(h).Code)

	rec := doRequest(h)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// the block key keeps rejecting until it expires
	rec = doRequest(h)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiter_WindowReset(t *testing.T) {
	h, mr := newLimitedHandler(t, 1, time.Minute, 10*time.Minute)

	assert.Equal(t, http.StatusOK, doRequest(h).Code)

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, doRequest(h).Code)
}

func TestRateLimiter_FailsOpenWhenRedisDown(t *testing.T) {
	h, mr := newLimitedHandler(t, 1, time.Minute, 10*time.Minute)
	mr.Close()

	assert.Equal(t, http.StatusOK, doRequest(h).Code)
	assert.Equal(t, http.StatusOK, doRequest(h).Code)
}

func TestRateLimiter_SeparatesClients(t *testing.T) {
	h, _ := newLimitedHandler(t, 1, time.Minute, 10*time.Minute)

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1111"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusOK, rec.Code)

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:2222"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}
