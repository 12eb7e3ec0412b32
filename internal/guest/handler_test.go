// AngelaMos | 2026
// handler_test.go

package guest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/dice-roller/internal/config"
	"github.com/carterperez-dev/templates/dice-roller/internal/guest"
	"github.com/carterperez-dev/templates/dice-roller/internal/middleware"
	"github.com/carterperez-dev/templates/dice-roller/internal/session"
	"github.com/carterperez-dev/templates/dice-roller/internal/testdb"
)

type guestEnv struct {
	router   http.Handler
	service  *guest.Service
	sessions *session.Manager
}

func newGuestEnv(t *testing.T) *guestEnv {
	t.Helper()

	client, _ := testdb.OpenRedis(t)
	sessions := session.NewManager(session.NewRedisStore(client), config.SessionConfig{
		CookieName: "dice_session",
		TTL:        time.Hour,
	})

	svc := guest.NewService(guest.NewRepository(testdb.Open(t)))
	h := guest.NewHandler(svc, guest.NewBinder(svc, sessions))

	r := chi.NewRouter()
	r.Use(middleware.Identify(sessions, nil))
	r.Route("/auth", h.RegisterRoutes)

	return &guestEnv{router: r, service: svc, sessions: sessions}
}

func (e *guestEnv) do(method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCheckGuestLimitCreatesSession(t *testing.T) {
	env := newGuestEnv(t)

	rec := env.do(http.MethodGet, "/auth/check-guest-limit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info guest.Info
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.True(t, info.IsGuest)
	assert.Equal(t, guest.GuestRollLimit, info.RollsLeft)
	assert.False(t, info.LimitReached)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	// the same cookie keeps the same guest row
	rec = env.do(http.MethodGet, "/auth/check-guest-limit", cookies[0])
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestIncrementGuestRoll(t *testing.T) {
	env := newGuestEnv(t)

	rec := env.do(http.MethodPost, "/auth/increment-guest-roll", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_GUEST_SESSION")

	rec = env.do(http.MethodGet, "/auth/check-guest-limit", nil)
	cookie := rec.Result().Cookies()[0]

	for range 3 {
		rec = env.do(http.MethodPost, "/auth/increment-guest-roll", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/auth/check-guest-limit", cookie)
	var info guest.Info
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, guest.GuestRollLimit-3, info.RollsLeft)
}

func TestCheckGuestLimitForMember(t *testing.T) {
	env := newGuestEnv(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, env.sessions.Start(context.Background(), rec, req, &session.Session{
		UserID: "user-1",
	}))
	cookie := rec.Result().Cookies()[0]

	rec = env.do(http.MethodGet, "/auth/check-guest-limit", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"is_guest":false,"rolls_left":-1}`, rec.Body.String())

	rec = env.do(http.MethodPost, "/auth/increment-guest-roll", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	counts, err := env.service.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Total)
}

func TestBindReplacesPurgedGuest(t *testing.T) {
	env := newGuestEnv(t)

	rec := env.do(http.MethodGet, "/auth/check-guest-limit", nil)
	cookie := rec.Result().Cookies()[0]

	for range guest.GuestRollLimit {
		rec = env.do(http.MethodPost, "/auth/increment-guest-roll", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	removed, err := env.service.PurgeInactive(context.Background(), time.Nanosecond)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	rec = env.do(http.MethodGet, "/auth/check-guest-limit", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var info guest.Info
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, guest.GuestRollLimit, info.RollsLeft)
}
