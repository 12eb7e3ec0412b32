// AngelaMos | 2026
// handler_test.go

package roll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/dice-roller/internal/config"
	"github.com/carterperez-dev/templates/dice-roller/internal/guest"
	"github.com/carterperez-dev/templates/dice-roller/internal/middleware"
	"github.com/carterperez-dev/templates/dice-roller/internal/roll"
	"github.com/carterperez-dev/templates/dice-roller/internal/session"
	"github.com/carterperez-dev/templates/dice-roller/internal/testdb"
)

type apiEnv struct {
	*fixture
	router   http.Handler
	sessions *session.Manager
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	f := newFixture(t, nil)

	client, _ := testdb.OpenRedis(t)
	sessions := session.NewManager(session.NewRedisStore(client), config.SessionConfig{
		CookieName: "dice_session",
		TTL:        time.Hour,
	})

	h := roll.NewHandler(f.service, guest.NewBinder(f.guests, sessions), "https://dice.example.com/")

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identify(sessions, nil))
		r.Route("/api", h.RegisterRoutes)
		h.RegisterShareRoutes(r)
	})

	return &apiEnv{fixture: f, router: r, sessions: sessions}
}

func (e *apiEnv) call(
	method, path, body string,
	cookie *http.Cookie,
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *apiEnv) login(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, e.sessions.Start(context.Background(), rec, req, &session.Session{
		UserID: userID,
	}))
	return rec.Result().Cookies()[0]
}

func TestRollEndpointGuestFlow(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.call(http.MethodPost, "/api/roll", `{"sides":6,"count":3}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]

	var resp roll.RollResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, 6, resp.DiceSides)
	assert.Equal(t, 3, resp.DiceCount)
	require.NotNil(t, resp.GuestInfo)
	assert.True(t, resp.GuestInfo.IsGuest)
	assert.Equal(t, guest.GuestRollLimit-1, resp.GuestInfo.RollsLeft)

	for range guest.GuestRollLimit - 1 {
		rec = env.call(http.MethodPost, "/api/roll", `{"sides":6,"count":1}`, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = env.call(http.MethodPost, "/api/roll", `{"sides":6,"count":1}`, cookie)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var denied roll.QuotaExceededResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&denied))
	assert.False(t, denied.Success)
	assert.True(t, denied.LimitReached)
	assert.NotEmpty(t, denied.Message)

	rec = env.call(http.MethodGet, "/api/history", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []roll.RollItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&items))
	assert.Len(t, items, guest.GuestRollLimit)
}

func TestRollEndpointValidation(t *testing.T) {
	env := newAPIEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad sides", `{"sides":7,"count":1}`},
		{"too many", `{"sides":6,"count":11}`},
		{"zero count", `{"sides":6,"count":0}`},
		{"malformed", `{"sides":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.call(http.MethodPost, "/api/roll", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}

	assert.Zero(t, env.countRolls(t))
}

func TestRollEndpointMember(t *testing.T) {
	env := newAPIEnv(t)
	cookie := env.login(t, env.member(t, "ada"))

	for range guest.GuestRollLimit + 2 {
		rec := env.call(http.MethodPost, "/api/roll", `{"sides":20,"count":2}`, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "guest_info")
	}

	rec := env.call(http.MethodGet, "/api/stats", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.InDelta(t, guest.GuestRollLimit+2, body["total_rolls"], 0)
	assert.Equal(t, "D20", body["favorite_dice"])
	assert.Contains(t, body, "lucky_number")
	assert.Contains(t, body, "avg_roll")
}

func TestStatsRequiresLogin(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.call(http.MethodGet, "/api/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShareRoll(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.call(http.MethodPost, "/api/share-roll",
		`{"results":[3,5],"total":8,"dice_sides":6,"dice_count":2}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp roll.ShareResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ShareID)
	assert.Equal(t, "https://dice.example.com/share/"+resp.ShareID, resp.ShareURL)
	assert.Equal(t, []int{3, 5}, resp.RollData.Results)

	rec = env.call(http.MethodPost, "/api/share-roll",
		`{"results":[],"total":0,"dice_sides":7,"dice_count":0}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"errors"`)
}

func TestGetSharedRoll(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.call(http.MethodPost, "/api/roll", `{"sides":12,"count":2}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	history := env.call(http.MethodGet, "/api/history", "", rec.Result().Cookies()[0])
	var items []roll.RollItem
	require.NoError(t, json.NewDecoder(history.Body).Decode(&items))
	require.Len(t, items, 1)

	rec = env.call(http.MethodGet, "/share/"+items[0].ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var shared roll.RollItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&shared))
	assert.Equal(t, items[0].Results, shared.Results)

	rec = env.call(http.MethodGet, "/share/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectedGuestRollLeavesSessionUntouched(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.call(http.MethodPost, "/api/roll", `{"sides":6,"count":1}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := rec.Result().Cookies()[0]

	for range guest.GuestRollLimit - 1 {
		rec = env.call(http.MethodPost, "/api/roll", `{"sides":6,"count":1}`, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var before guest.Session
	require.NoError(t, env.db.Get(&before, `SELECT * FROM guest_sessions`))

	time.Sleep(5 * time.Millisecond)

	rec = env.call(http.MethodPost, "/api/roll", `{"sides":6,"count":1}`, cookie)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var after guest.Session
	require.NoError(t, env.db.Get(&after, `SELECT * FROM guest_sessions`))
	assert.Equal(t, before.RollCount, after.RollCount)
	assert.True(t, before.LastActivity.Equal(after.LastActivity),
		"last_activity moved from %s to %s", before.LastActivity, after.LastActivity)
}

func TestRollEndpointDeletedAccount(t *testing.T) {
	env := newAPIEnv(t)
	cookie := env.login(t, "deleted-user")

	rec := env.call(http.MethodPost, "/api/roll", `{"sides":6,"count":1}`, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
	assert.Zero(t, env.countRolls(t))
}
