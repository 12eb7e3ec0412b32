// AngelaMos | 2026
// ratelimit_test.go

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
	"github.com/carterperez-dev/templates/dice-roller/internal/middleware"
	"github.com/carterperez-dev/templates/dice-roller/internal/testdb"
)

func withActor(r *http.Request, actor core.Actor) *http.Request {
	return r.WithContext(middleware.WithActor(r.Context(), actor))
}

func TestKeyByActor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.7:4242"

	assert.Equal(t, "ratelimit:ip:203.0.113.7", middleware.KeyByActor(r))
	assert.Equal(t, "ratelimit:guest:g-1",
		middleware.KeyByActor(withActor(r, core.GuestActor("g-1"))))
	assert.Equal(t, "ratelimit:user:u-1",
		middleware.KeyByActor(withActor(r, core.UserActor("u-1", true))))
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	client, _ := testdb.OpenRedis(t)

	limiter := middleware.NewRateLimiter(client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(2, 2),
		BypassFunc: func(r *http.Request) bool {
			return r.URL.Path == "/healthz"
		},
	})
	h := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/roll", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTieredRateLimiterUsesActorKind(t *testing.T) {
	client, _ := testdb.OpenRedis(t)

	tiers := map[string]middleware.TierConfig{
		core.ActorGuest:   {RequestsPerMinute: 1, BurstSize: 1},
		core.ActorUser:    {RequestsPerMinute: 5, BurstSize: 5},
		core.ActorPremium: {RequestsPerMinute: 50, BurstSize: 50},
	}
	h := middleware.TieredRateLimiter(client, tiers)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	send := func(actor core.Actor) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodGet, "/api/roll", nil), actor))
		return rec
	}

	guest := core.GuestActor("g-1")
	assert.Equal(t, http.StatusOK, send(guest).Code)
	limited := send(guest)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, core.ActorGuest, limited.Header().Get("X-RateLimit-Tier"))
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	member := core.UserActor("u-1", false)
	for range 5 {
		rec := send(member)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, core.ActorUser, rec.Header().Get("X-RateLimit-Tier"))
	}
}

func TestRateLimiterFallsBackWhenRedisIsDown(t *testing.T) {
	client, mr := testdb.OpenRedis(t)
	mr.Close()

	h := middleware.NewRateLimiter(client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(1, 1),
	}).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/roll", nil)
		req.RemoteAddr = "198.51.100.9:1234"
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
