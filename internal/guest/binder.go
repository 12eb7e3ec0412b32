// AngelaMos | 2026
// binder.go

package guest

import (
	"context"
	"net/http"

	"github.com/carterperez-dev/templates/dice-roller/internal/middleware"
	"github.com/carterperez-dev/templates/dice-roller/internal/session"
)

type SessionManager interface {
	Start(
		ctx context.Context,
		w http.ResponseWriter,
		r *http.Request,
		sess *session.Session,
	) error
	Save(ctx context.Context, sess *session.Session) error
}

// Binder ties a guest quota row to the visitor's cookie session.
type Binder struct {
	service  *Service
	sessions SessionManager
}

func NewBinder(service *Service, sessions SessionManager) *Binder {
	return &Binder{
		service:  service,
		sessions: sessions,
	}
}

// Bind returns a valid guest token for the request, creating the guest row
// and the cookie session when either is missing.
func (b *Binder) Bind(w http.ResponseWriter, r *http.Request) (string, error) {
	return b.bind(w, r, b.service.GetOrCreate)
}

// BindQuiet is Bind without refreshing the activity time of an existing
// guest session.
func (b *Binder) BindQuiet(w http.ResponseWriter, r *http.Request) (string, error) {
	return b.bind(w, r, b.service.Resolve)
}

func (b *Binder) bind(
	w http.ResponseWriter,
	r *http.Request,
	resolve func(context.Context, string) (string, error),
) (string, error) {
	ctx := r.Context()
	sess := middleware.GetSession(ctx)

	var current string
	if sess != nil {
		current = sess.GuestToken
	}

	token, err := resolve(ctx, current)
	if err != nil {
		return "", err
	}

	switch {
	case sess == nil:
		err = b.sessions.Start(ctx, w, r, &session.Session{GuestToken: token})
	case token != current:
		sess.GuestToken = token
		err = b.sessions.Save(ctx, sess)
	}
	if err != nil {
		return "", err
	}

	return token, nil
}
