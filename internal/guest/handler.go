// AngelaMos | 2026
// handler.go

package guest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
	"github.com/carterperez-dev/templates/dice-roller/internal/middleware"
)

type Info struct {
	IsGuest      bool `json:"is_guest"`
	RollsLeft    int  `json:"rolls_left"`
	LimitReached bool `json:"limit_reached"`
}

func NewInfo(q Quota) Info {
	return Info{
		IsGuest:      true,
		RollsLeft:    q.RollsLeft,
		LimitReached: q.LimitReached,
	}
}

type memberLimitResponse struct {
	IsGuest   bool `json:"is_guest"`
	RollsLeft int  `json:"rolls_left"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type Handler struct {
	service *Service
	binder  *Binder
}

func NewHandler(service *Service, binder *Binder) *Handler {
	return &Handler{
		service: service,
		binder:  binder,
	}
}

// RegisterRoutes mounts relative to the /auth prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/check-guest-limit", h.CheckLimit)
	r.Post("/increment-guest-roll", h.IncrementRoll)
}

func (h *Handler) CheckLimit(w http.ResponseWriter, r *http.Request) {
	if middleware.IsAuthenticated(r.Context()) {
		core.OK(w, memberLimitResponse{IsGuest: false, RollsLeft: -1})
		return
	}

	token, err := h.binder.Bind(w, r)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	quota, err := h.service.CheckLimit(r.Context(), token)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, NewInfo(quota))
}

func (h *Handler) IncrementRoll(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	if actor.IsAuthenticated() {
		core.OK(w, successResponse{Success: true})
		return
	}

	if actor.GuestToken == "" {
		core.JSON(w, http.StatusBadRequest, core.ErrorResponse{
			Error: "no guest session",
			Code:  "NO_GUEST_SESSION",
		})
		return
	}

	err := h.service.Increment(r.Context(), actor.GuestToken)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, successResponse{Success: true})
}
