package details

import (
	"errors"
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

type typeForm struct {
	Code     string `json:"code" validate:"required"`
	Title    string `json:"title" validate:"required"`
	IsActive bool   `json:"is_active"`
}

type deleteTypesForm struct {
	IDs []int64 `json:"ids" validate:"required,min=1"`
}

type instanceForm struct {
	TypeID     int64   `json:"type_id" validate:"required,gt=0"`
	EntityCode string  `json:"entity_code" validate:"required"`
	Title      string  `json:"title" validate:"required"`
	DetailCode *string `json:"detail_code"`
	IsActive   bool    `json:"is_active"`
}

type assignForm struct {
	DetailCode string `json:"detail_code" validate:"required"`
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(internalShared.PermDetailsView))
		r.Get("/types", h.ListTypes)
		r.Get("/types/{id}", h.ShowType)
		r.Get("/types/{id}/instances", h.ListInstances)
		r.Get("/instances/{id}", h.ShowInstance)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(internalShared.PermDetailsEdit))
		r.Post("/types", h.CreateType)
		r.Put("/types/{id}", h.UpdateType)
		r.Post("/types/delete", h.DeleteTypes)
		r.Post("/instances", h.CreateInstance)
		r.Put("/instances/{id}", h.UpdateInstance)
		r.Delete("/instances/{id}", h.DeleteInstance)
		r.Post("/instances/{id}/code", h.AssignCode)
	})
}

func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.AllTypes(r.Context())
	if err != nil {
		h.logger.Error("list detail types failed", "error", err)
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
}

func (h *Handler) ShowType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	t, err := h.service.GetType(r.Context(), id)
	if err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) CreateType(w http.ResponseWriter, r *http.Request) {
	var form typeForm
	if !h.decode(w, r, &form) {
		return
	}
	created, err := h.service.CreateType(r.Context(), internalShared.ActorID(r.Context()), DetailType{
		Code: form.Code, Title: form.Title, IsActive: form.IsActive,
	})
	if err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	var form typeForm
	if !h.decode(w, r, &form) {
		return
	}
	if err := h.service.UpdateType(r.Context(), internalShared.ActorID(r.Context()), id, DetailType{
		Code: form.Code, Title: form.Title, IsActive: form.IsActive,
	}); err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) DeleteTypes(w http.ResponseWriter, r *http.Request) {
	var form deleteTypesForm
	if !h.decode(w, r, &form) {
		return
	}
	if err := h.service.DeleteTypes(r.Context(), internalShared.ActorID(r.Context()), form.IDs); err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": len(form.IDs)})
}

func (h *Handler) ListInstances(w http.ResponseWriter, r *http.Request) {
	typeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	list, err := h.service.ListInstances(r.Context(), typeID)
	if err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
}

func (h *Handler) ShowInstance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	inst, err := h.service.GetInstance(r.Context(), id)
	if err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inst)
}

func (h *Handler) CreateInstance(w http.ResponseWriter, r *http.Request) {
	var form instanceForm
	if !h.decode(w, r, &form) {
		return
	}
	created, err := h.service.CreateInstance(r.Context(), internalShared.ActorID(r.Context()), DetailInstance{
		TypeID: form.TypeID, EntityCode: form.EntityCode, Title: form.Title,
		DetailCode: form.DetailCode, IsActive: form.IsActive,
	})
	if err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateInstance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	var form instanceForm
	if !h.decode(w, r, &form) {
		return
	}
	if err := h.service.UpdateInstance(r.Context(), internalShared.ActorID(r.Context()), id, DetailInstance{
		EntityCode: form.EntityCode, Title: form.Title, IsActive: form.IsActive,
	}); err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) DeleteInstance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	if err := h.service.DeleteInstance(r.Context(), internalShared.ActorID(r.Context()), id); err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) AssignCode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	var form assignForm
	if !h.decode(w, r, &form) {
		return
	}
	inst, err := h.service.AssignCode(r.Context(), internalShared.ActorID(r.Context()), id, form.DetailCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCode):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		case errors.Is(err, ErrAlreadyAssigned):
			httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
		default:
			shared.Respond(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, inst)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, form any) bool {
	if err := httpx.DecodeJSON(r, form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return false
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}
