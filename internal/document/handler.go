// AngelaMos | 2026
// handler.go

package document

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/casefile/internal/core"
	"github.com/angelamos/casefile/internal/middleware"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", h.CreateUpload)
		r.Get("/", h.List)
		r.Get("/{documentID}", h.Get)
		r.Post("/{documentID}/confirm", h.ConfirmUpload)
		r.Get("/{documentID}/download", h.Download)
		r.Patch("/{documentID}", h.Update)
		r.Delete("/{documentID}", h.Delete)
	})
}

func (h *Handler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.CreateUpload(r.Context(), actor, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	params := ListDocumentsParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		CaseID:   r.URL.Query().Get("case_id"),
		Status:   r.URL.Query().Get("status"),
		Search:   r.URL.Query().Get("search"),
	}

	items, total, err := h.service.List(r.Context(), actor, params)
	if err != nil {
		h.handleError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(w, items, params.Page, params.PageSize, total)
}

func (h *Handler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	var req ConfirmUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.ConfirmUpload(
		r.Context(), actor, chi.URLParam(r, "documentID"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	resp, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "documentID"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	resp, err := h.service.Download(
		r.Context(), actor, chi.URLParam(r, "documentID"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Update(
		r.Context(), actor, chi.URLParam(r, "documentID"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "documentID"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "document")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "document is not available for download")
	default:
		core.InternalServerError(w, err)
	}
}

func requestActor(r *http.Request) (Actor, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		return Actor{}, false
	}
	return Actor{UserID: userID, IsAdmin: middleware.IsAdmin(r.Context())}, true
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
