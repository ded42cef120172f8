package vouchers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
	"github.com/daftar-erp/daftar/internal/platform/httpx"
	"github.com/daftar-erp/daftar/internal/rbac"
	internalShared "github.com/daftar-erp/daftar/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(internalShared.PermVouchersView))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(internalShared.PermVouchersView, internalShared.PermVouchersPrint))
		r.Get("/{id}/print", h.Print)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := strconv.ParseInt(r.URL.Query().Get("ledger_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "ledger_id query parameter is required")
		return
	}
	filters := shared.ParseFilters(r)
	list, total, err := h.service.List(r.Context(), ledgerID, filters)
	if err != nil {
		h.logger.Error("list vouchers failed", "error", err)
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": list, "total": total, "page": filters.Page, "limit": filters.Limit,
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	voucher, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, voucher)
}

// Print assembles the full document. The language comes from the query
// string, then the session preference, defaulting to Persian.
func (h *Handler) Print(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.Respond(w, shared.ErrInvalidID)
		return
	}
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		if sess := internalShared.SessionFromContext(r.Context()); sess != nil {
			lang = sess.Language()
		}
	}
	if lang != "en" {
		lang = "fa"
	}
	doc, err := h.service.Print(r.Context(), id, lang)
	if err != nil {
		shared.Respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}
