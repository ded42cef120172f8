package organization

import (
	"log/slog"
	"net/http"

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

type infoForm struct {
	Name        string `json:"name" validate:"required"`
	LegalName   string `json:"legal_name"`
	NationalID  string `json:"national_id"`
	EconomicID  string `json:"economic_id"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	FiscalStart string `json:"fiscal_start"`
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(internalShared.PermMasterView))
		r.Get("/", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(internalShared.PermMasterEdit))
		r.Put("/", h.Save)
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Get(r.Context())
	if err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, info)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var form infoForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.service.Save(r.Context(), internalShared.ActorID(r.Context()), Info{
		Name: form.Name, LegalName: form.LegalName, NationalID: form.NationalID,
		EconomicID: form.EconomicID, Address: form.Address, Phone: form.Phone,
		FiscalStart: form.FiscalStart,
	})
	if err != nil {
		h.logger.Error("save organization failed", "error", err)
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}
