// AngelaMos | 2026
// manager.go

package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/dice-roller/internal/config"
	"github.com/carterperez-dev/templates/dice-roller/internal/core"
)

type Manager struct {
	store Store
	cfg   config.SessionConfig
	now   func() time.Time
}

func NewManager(store Store, cfg config.SessionConfig) *Manager {
	return &Manager{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Load returns the session referenced by the request cookie, or nil when
// there is no cookie or the server no longer knows the token.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	sess, err := m.store.Get(r.Context(), cookie.Value)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return sess, nil
}

// Start stores sess under a freshly minted token and sets the cookie. Any
// session the request already carried is discarded, so ids rotate on login.
func (m *Manager) Start(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	sess *Session,
) error {
	if cookie, err := r.Cookie(m.cfg.CookieName); err == nil && cookie.Value != "" {
		if delErr := m.store.Delete(ctx, cookie.Value); delErr != nil {
			return delErr
		}
	}

	token, err := core.GenerateSessionToken()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = m.now().UTC()
	}
	sess.token = token

	if err := m.store.Put(ctx, token, sess, m.ttl(sess)); err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure(r),
		SameSite: http.SameSiteLaxMode,
	}
	if sess.Remember {
		cookie.Expires = m.now().Add(m.cfg.RememberTTL)
		cookie.MaxAge = int(m.cfg.RememberTTL.Seconds())
	}
	http.SetCookie(w, cookie)

	return nil
}

// Save writes changes to an already started session and refreshes its TTL.
func (m *Manager) Save(ctx context.Context, sess *Session) error {
	if sess.token == "" {
		return fmt.Errorf("save session: session was never started")
	}
	return m.store.Put(ctx, sess.token, sess, m.ttl(sess))
}

func (m *Manager) Destroy(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
) error {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure(r),
		SameSite: http.SameSiteLaxMode,
	})

	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	return m.store.Delete(ctx, cookie.Value)
}

func (m *Manager) ttl(sess *Session) time.Duration {
	if sess.Remember {
		return m.cfg.RememberTTL
	}
	return m.cfg.TTL
}

func (m *Manager) secure(r *http.Request) bool {
	if m.cfg.Secure || r.TLS != nil {
		return true
	}
	return strings.EqualFold(
		strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")),
		"https",
	)
}
