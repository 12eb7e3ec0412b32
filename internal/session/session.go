// AngelaMos | 2026
// session.go

package session

import (
	"time"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
)

// Session is the server-side state behind the opaque cookie token. A guest
// session carries only GuestToken; logging in replaces it.
type Session struct {
	UserID     string    `json:"user_id,omitempty"`
	Premium    bool      `json:"premium,omitempty"`
	GuestToken string    `json:"guest_token,omitempty"`
	Remember   bool      `json:"remember,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	token string
}

func (s *Session) Token() string {
	return s.token
}

func (s *Session) IsAuthenticated() bool {
	return s.UserID != ""
}

func (s *Session) Actor() core.Actor {
	if s.IsAuthenticated() {
		return core.UserActor(s.UserID, s.Premium)
	}
	return core.GuestActor(s.GuestToken)
}
