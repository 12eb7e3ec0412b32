// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
)

// RateLimitConfig describes one limiter. Limit is used unless Tiers is set,
// in which case the budget follows the caller's actor kind.
type RateLimitConfig struct {
	Limit      redis_rate.Limit
	Tiers      map[string]TierConfig
	KeyFunc    func(*http.Request) string
	FailOpen   bool
	BypassFunc func(*http.Request) bool
}

type TierConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// DefaultTiers is keyed by core.Actor.Kind.
var DefaultTiers = map[string]TierConfig{
	core.ActorGuest:   {RequestsPerMinute: 30, BurstSize: 10},
	core.ActorUser:    {RequestsPerMinute: 120, BurstSize: 30},
	core.ActorPremium: {RequestsPerMinute: 600, BurstSize: 100},
}

// RateLimiter enforces a GCRA budget in Redis and keeps serving from an
// in-process token bucket per key while Redis is unreachable.
type RateLimiter struct {
	redis    *redis_rate.Limiter
	fallback *localBuckets
	cfg      RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	return &RateLimiter{
		redis:    redis_rate.NewLimiter(rdb),
		fallback: newLocalBuckets(),
		cfg:      cfg,
	}
}

// TieredRateLimiter budgets each caller by actor kind and keys it by actor.
// It must run after Identify.
func TieredRateLimiter(
	rdb *redis.Client,
	tiers map[string]TierConfig,
) func(http.Handler) http.Handler {
	return NewRateLimiter(rdb, RateLimitConfig{
		Tiers:    tiers,
		KeyFunc:  KeyByActor,
		FailOpen: true,
	}).Handler
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.cfg.BypassFunc != nil && rl.cfg.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		limit := rl.cfg.Limit
		if rl.cfg.Tiers != nil {
			tier := GetActor(r.Context()).Kind()
			limit = rl.tierLimit(tier)
			w.Header().Set("X-RateLimit-Tier", tier)
		}

		key := rl.cfg.KeyFunc(r)
		res, err := rl.allow(r.Context(), key, limit)
		if err != nil {
			if rl.cfg.FailOpen {
				slog.WarnContext(r.Context(), "rate limiter error, failing open",
					"error", err,
					"key", key,
				)
				next.ServeHTTP(w, r)
				return
			}
			core.JSON(w, http.StatusServiceUnavailable, core.ErrorResponse{
				Error: "rate limiter unavailable",
				Code:  "SERVICE_UNAVAILABLE",
			})
			return
		}

		writeLimitHeaders(w.Header(), res, limit)

		if res.Allowed == 0 {
			tooManyRequests(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) tierLimit(tier string) redis_rate.Limit {
	t, ok := rl.cfg.Tiers[tier]
	if !ok {
		t = rl.cfg.Tiers[core.ActorGuest]
	}
	return PerMinute(t.RequestsPerMinute, t.BurstSize)
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	res, err := rl.redis.Allow(ctx, key, limit)
	if err == nil {
		return res, nil
	}

	slog.DebugContext(ctx, "redis rate limit unavailable, using local bucket",
		"error", err,
	)
	return rl.fallback.allow(key, limit)
}

func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + clientIP(r)
}

// KeyByActor buckets logged-in users by id and guests by guest token,
// falling back to the client IP for guests that have no session yet.
func KeyByActor(r *http.Request) string {
	actor := GetActor(r.Context())
	switch {
	case actor.IsAuthenticated():
		return "ratelimit:user:" + actor.UserID
	case actor.GuestToken != "":
		return "ratelimit:guest:" + actor.GuestToken
	default:
		return KeyByIP(r)
	}
}

// clientIP trusts the last X-Forwarded-For hop, the one appended by our own
// proxy.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeLimitHeaders(h http.Header, res *redis_rate.Result, limit redis_rate.Limit) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset",
		strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy",
		fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit",
		fmt.Sprintf("%d;t=%d", res.Remaining, int(res.ResetAfter.Seconds())))
}

func tooManyRequests(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(1, int(res.RetryAfter.Seconds()))

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSON(w, http.StatusTooManyRequests, core.ErrorResponse{
		Error: fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter),
		Code:  "RATE_LIMITED",
	})
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return Every(rate, burst, time.Minute)
}

// Every builds a limit of rate requests per window, as configured under
// rate_limit.
func Every(rate, burst int, window time.Duration) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: window,
	}
}

const (
	bucketSweepInterval = 5 * time.Minute
	bucketIdleTTL       = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localBuckets is the per-process fallback. Idle buckets are swept so the
// map does not grow with every client ever seen.
type localBuckets struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func newLocalBuckets() *localBuckets {
	l := &localBuckets{buckets: make(map[string]*bucket)}
	go l.sweep()
	return l
}

func (l *localBuckets) sweep() {
	ticker := time.NewTicker(bucketSweepInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		l.mu.Lock()
		for key, b := range l.buckets {
			if now.Sub(b.lastSeen) > bucketIdleTTL {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

func (l *localBuckets) allow(
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return nil, fmt.Errorf("invalid rate limit %+v", limit)
	}

	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSecond)

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	allowed := b.limiter.Allow()
	remaining := max(0, int(b.limiter.Tokens()))
	l.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}

	return res, nil
}
