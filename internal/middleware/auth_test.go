// AngelaMos | 2026
// auth_test.go

package middleware_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
	"github.com/carterperez-dev/templates/dice-roller/internal/middleware"
	"github.com/carterperez-dev/templates/dice-roller/internal/session"
)

type stubLoader struct {
	sess *session.Session
	err  error
}

func (s stubLoader) Load(*http.Request) (*session.Session, error) {
	return s.sess, s.err
}

type stubVerifier map[string]*middleware.AccessTokenClaims

func (v stubVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, fmt.Errorf("verify: %w", core.ErrTokenExpired)
}

func captureActor(t *testing.T, h func(http.Handler) http.Handler, r *http.Request) (core.Actor, *httptest.ResponseRecorder) {
	t.Helper()

	var got core.Actor
	rec := httptest.NewRecorder()
	h(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.GetActor(r.Context())
	})).ServeHTTP(rec, r)

	return got, rec
}

func TestIdentify(t *testing.T) {
	verifier := stubVerifier{"good": {UserID: "api-user", Premium: true}}

	tests := []struct {
		name   string
		loader stubLoader
		bearer string
		want   core.Actor
	}{
		{
			name:   "logged in session",
			loader: stubLoader{sess: &session.Session{UserID: "u-1"}},
			want:   core.UserActor("u-1", false),
		},
		{
			name:   "session beats bearer",
			loader: stubLoader{sess: &session.Session{UserID: "u-1"}},
			bearer: "good",
			want:   core.UserActor("u-1", false),
		},
		{
			name:   "guest session with bearer",
			loader: stubLoader{sess: &session.Session{GuestToken: "g-1"}},
			bearer: "good",
			want:   core.UserActor("api-user", true),
		},
		{
			name:   "guest session",
			loader: stubLoader{sess: &session.Session{GuestToken: "g-1"}},
			want:   core.GuestActor("g-1"),
		},
		{
			name:   "anonymous",
			loader: stubLoader{},
			want:   core.Actor{},
		},
		{
			name:   "store failure degrades to anonymous",
			loader: stubLoader{err: errors.New("redis down")},
			want:   core.Actor{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.bearer != "" {
				r.Header.Set("Authorization", "Bearer "+tt.bearer)
			}

			got, rec := captureActor(t, middleware.Identify(tt.loader, verifier), r)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifyRejectsBadBearer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer stale")

	_, rec := captureActor(t, middleware.Identify(stubLoader{}, stubVerifier{}), r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
}

func TestIdentifyIgnoresBearerWithoutVerifier(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer anything")

	got, rec := captureActor(t, middleware.Identify(stubLoader{}, nil), r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.IsGuest())
}

func TestRequireUser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	middleware.RequireUser(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(middleware.WithActor(r.Context(), core.UserActor("u-1", false)))
	rec = httptest.NewRecorder()
	middleware.RequireUser(next).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRequireAdminToken(t *testing.T) {
	guard := middleware.RequireAdminToken("s3cret")
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer wrong", http.StatusForbidden},
		{"Basic s3cret", http.StatusUnauthorized},
		{"Bearer s3cret", http.StatusNoContent},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		guard(next).ServeHTTP(rec, r)
		assert.Equal(t, tt.want, rec.Code, tt.header)
	}
}
