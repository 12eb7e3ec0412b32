// AngelaMos | 2026
// handler.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
	"github.com/carterperez-dev/templates/dice-roller/internal/session"
)

const (
	RedirectAfterLogin  = "/roller"
	RedirectAfterLogout = "/"
	oauthUnavailableURL = "/auth/register?notice=oauth_unavailable"
)

type SessionStarter interface {
	Start(
		ctx context.Context,
		w http.ResponseWriter,
		r *http.Request,
		sess *session.Session,
	) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

type Handler struct {
	service  *Service
	sessions SessionStarter
}

func NewHandler(service *Service, sessions SessionStarter) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
	}
}

// RegisterRoutes mounts relative to the /auth prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Get("/google", h.Google)
	r.Post("/token", h.Token)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.startSession(w, r, user, false); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, AuthResponse{Success: true, Redirect: RedirectAfterLogin})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	user, err := h.service.Login(r.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(w, core.InvalidCredentialsError())
			return
		}
		core.JSONError(w, err)
		return
	}

	if err := h.startSession(w, r, user, req.Remember); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, AuthResponse{Success: true, Redirect: RedirectAfterLogin})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.ErrorContext(r.Context(), "destroy session", "error", err)
	}

	http.Redirect(w, r, RedirectAfterLogout, http.StatusFound)
}

// Google stands in for the OAuth flow, which is not offered yet.
func (h *Handler) Google(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, oauthUnavailableURL, http.StatusFound)
}

func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	resp, err := h.service.IssueToken(
		r.Context(),
		req.EmailOrUsername,
		req.Password,
	)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(w, core.InvalidCredentialsError())
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) startSession(
	w http.ResponseWriter,
	r *http.Request,
	user *UserInfo,
	remember bool,
) error {
	return h.sessions.Start(r.Context(), w, r, &session.Session{
		UserID:   user.ID,
		Premium:  user.Premium,
		Remember: remember,
	})
}
