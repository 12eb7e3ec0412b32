// AngelaMos | 2026
// handler.go

package roll

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
	"github.com/carterperez-dev/templates/dice-roller/internal/guest"
	"github.com/carterperez-dev/templates/dice-roller/internal/middleware"
)

const shareIDBytes = 8

type Handler struct {
	service   *Service
	binder    *guest.Binder
	validator *validator.Validate
	publicURL string
}

func NewHandler(service *Service, binder *guest.Binder, publicURL string) *Handler {
	return &Handler{
		service:   service,
		binder:    binder,
		validator: core.NewValidator(),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// RegisterRoutes mounts relative to the /api prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/roll", h.Roll)
	r.Get("/history", h.History)
	r.Post("/share-roll", h.Share)

	r.With(middleware.RequireUser).Get("/stats", h.Stats)
}

func (h *Handler) RegisterShareRoutes(r chi.Router) {
	r.Get("/share/{id}", h.GetShared)
}

func (h *Handler) Roll(w http.ResponseWriter, r *http.Request) {
	var req RollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := Validate(req.Sides, req.Count); err != nil {
		core.JSONError(w, err)
		return
	}

	actor := middleware.GetActor(r.Context())
	if actor.IsGuest() {
		token, err := h.binder.BindQuiet(w, r)
		if err != nil {
			core.InternalServerError(w, err)
			return
		}
		actor.GuestToken = token
	}

	out, err := h.service.Roll(r.Context(), actor, req.Sides, req.Count)
	if err != nil {
		if errors.Is(err, core.ErrQuotaExceeded) {
			core.JSON(w, http.StatusForbidden, QuotaExceededResponse{
				Error:        "guest roll limit reached",
				LimitReached: true,
				Message:      "register for a free account to keep rolling",
			})
			return
		}
		if errors.Is(err, core.ErrUnauthorized) {
			msg := "guest session required"
			if actor.IsAuthenticated() {
				msg = "account no longer exists, sign in again"
			}
			core.Unauthorized(w, msg)
			return
		}
		core.JSONError(w, err)
		return
	}

	resp := RollResponse{
		Results:   out.Roll.Results,
		Total:     out.Roll.Total,
		DiceSides: out.Roll.DiceSides,
		DiceCount: out.Roll.DiceCount,
		Timestamp: out.Roll.CreatedAt,
	}
	if out.Quota != nil {
		info := guest.NewInfo(*out.Quota)
		resp.GuestInfo = &info
	}

	core.OK(w, resp)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	rolls, err := h.service.History(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	items := make([]RollItem, 0, len(rolls))
	for i := range rolls {
		items = append(items, ToRollItem(&rolls[i]))
	}

	core.OK(w, items)
}

// Share hands back a link for the submitted roll. The share id is not
// stored, so the link only resolves when it happens to match a roll id.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.ValidationMessages(err, nil))
		return
	}

	id, err := core.GenerateSecureToken(shareIDBytes)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ShareResponse{
		Success:  true,
		ShareID:  id,
		ShareURL: h.publicURL + "/share/" + id,
		RollData: req,
	})
}

func (h *Handler) GetShared(w http.ResponseWriter, r *http.Request) {
	roll, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "roll")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToRollItem(roll))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Stats(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			core.Unauthorized(w, "")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, s)
}
