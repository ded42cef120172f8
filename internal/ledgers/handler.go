package ledgers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
	"github.com/daftar-erp/daftar/internal/platform/httpx"
	"github.com/daftar-erp/daftar/internal/rbac"
	internalShared "github.com/daftar-erp/daftar/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), rbac: rbac}
}

type ledgerForm struct {
	Code          string `json:"code" validate:"required"`
	Title         string `json:"title" validate:"required"`
	StructureCode string `json:"structure_code" validate:"required"`
	CurrencyCode  string `json:"currency_code" validate:"required"`
	IsActive      bool   `json:"is_active"`
}

type mainFlagForm struct {
	IsMain bool `json:"is_main"`
}

func (f ledgerForm) toModel() Ledger {
	return Ledger{
		Code: f.Code, Title: f.Title, StructureCode: f.StructureCode,
		CurrencyCode: f.CurrencyCode, IsActive: f.IsActive,
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(internalShared.PermLedgersView))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(internalShared.PermLedgersEdit))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Post("/{id}/main", h.SetMain)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.All(r.Context())
	if err != nil {
		h.logger.Error("list ledgers failed", "error", err)
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	ledger, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), internalShared.ActorID(r.Context()), form.toModel())
	if err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), internalShared.ActorID(r.Context()), id, form.toModel()); err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

// SetMain flips the main designation and reports the verified outcome.
// A conflicted or zero-flagged outcome is still a 200: the write itself
// succeeded, the payload tells the client what the table now holds.
func (h *Handler) SetMain(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	var form mainFlagForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	outcome, err := h.service.SetMain(r.Context(), internalShared.ActorID(r.Context()), id, form.IsMain)
	if err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, outcome)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	if err := h.service.Delete(r.Context(), internalShared.ActorID(r.Context()), id); err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (ledgerForm, bool) {
	var form ledgerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return form, false
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return form, false
	}
	return form, true
}
