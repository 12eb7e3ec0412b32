// AngelaMos | 2026
// context.go

package middleware

import (
	"context"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
	"github.com/carterperez-dev/templates/dice-roller/internal/session"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	ActorKey     contextKey = "actor"
	SessionKey   contextKey = "session"
)

func WithActor(ctx context.Context, actor core.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// GetActor returns the resolved caller, or an anonymous guest with no token
// when the request never passed through Identify.
func GetActor(ctx context.Context) core.Actor {
	if actor, ok := ctx.Value(ActorKey).(core.Actor); ok {
		return actor
	}
	return core.Actor{}
}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, SessionKey, sess)
}

func GetSession(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(SessionKey).(*session.Session); ok {
		return sess
	}
	return nil
}

func IsAuthenticated(ctx context.Context) bool {
	return GetActor(ctx).IsAuthenticated()
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
