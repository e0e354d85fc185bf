// AngelaMos | 2026
// handler.go

package email

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/casefile/internal/core"
	"github.com/angelamos/casefile/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/email/connections", func(r chi.Router) {
		r.Post("/link", h.BeginLink)
		r.Get("/", h.List)
		r.Get("/{connectionID}", h.Get)
		r.Post("/{connectionID}/refresh", h.RefreshToken)
		r.Post("/{connectionID}/revoke", h.Revoke)
		r.Delete("/{connectionID}", h.Delete)
	})
}

// RegisterCallbackRoute mounts the provider redirect endpoint. It is
// unauthenticated; the state parameter binds the callback to a user.
func (h *Handler) RegisterCallbackRoute(r chi.Router) {
	r.Get("/email/callback", h.Callback)
}

func (h *Handler) BeginLink(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "authentication required")
		return
	}

	resp, err := h.service.BeginLink(r.Context(), userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		core.BadRequest(w, "authorization was denied")
		return
	}

	if state == "" || code == "" {
		core.BadRequest(w, "missing state or code")
		return
	}

	resp, err := h.service.CompleteLink(r.Context(), state, code)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "authentication required")
		return
	}

	items, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "authentication required")
		return
	}

	resp, err := h.service.Get(
		r.Context(), userID, chi.URLParam(r, "connectionID"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "authentication required")
		return
	}

	resp, err := h.service.EnsureFreshToken(
		r.Context(), userID, chi.URLParam(r, "connectionID"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "authentication required")
		return
	}

	err := h.service.Revoke(
		r.Context(), userID, chi.URLParam(r, "connectionID"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "authentication required")
		return
	}

	err := h.service.Delete(
		r.Context(), userID, chi.URLParam(r, "connectionID"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidState):
		core.BadRequest(w, "invalid or expired state")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "email connection")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "connection is not usable")
	default:
		core.InternalServerError(w, err)
	}
}
