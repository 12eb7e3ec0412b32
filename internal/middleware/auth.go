// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
	"github.com/carterperez-dev/templates/dice-roller/internal/session"
)

type SessionLoader interface {
	Load(r *http.Request) (*session.Session, error)
}

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

type AccessTokenClaims struct {
	UserID  string
	Premium bool
}

// Identify resolves the request actor. A logged-in session wins, then a
// bearer token; otherwise the caller is a guest identified by the guest
// token stored in its session, if any. verifier may be nil.
func Identify(
	sessions SessionLoader,
	verifier TokenVerifier,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess, err := sessions.Load(r)
			if err != nil {
				slog.WarnContext(ctx, "session lookup failed",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				sess = nil
			}

			var actor core.Actor
			switch {
			case sess != nil && sess.IsAuthenticated():
				actor = sess.Actor()
			case verifier != nil && ExtractToken(r) != "":
				claims, verr := verifier.VerifyAccessToken(ctx, ExtractToken(r))
				if verr != nil {
					handleAuthError(w, verr)
					return
				}
				actor = core.UserActor(claims.UserID, claims.Premium)
			case sess != nil:
				actor = sess.Actor()
			}

			ctx = WithActor(ctx, actor)
			if sess != nil {
				ctx = WithSession(ctx, sess)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r.Context()) {
			core.Unauthorized(w, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdminToken guards operator routes with a static bearer token.
func RequireAdminToken(token string) func(http.Handler) http.Handler {
	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := ExtractToken(r)
			if got == "" {
				core.Unauthorized(w, "missing authorization token")
				return
			}

			if len(expected) == 0 ||
				subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
				core.Forbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}
