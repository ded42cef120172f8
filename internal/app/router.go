package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/daftar-erp/daftar/internal/auth"
	"github.com/daftar-erp/daftar/internal/details"
	"github.com/daftar-erp/daftar/internal/ledgers"
	"github.com/daftar-erp/daftar/internal/masterdata/accounts"
	"github.com/daftar-erp/daftar/internal/masterdata/branches"
	"github.com/daftar-erp/daftar/internal/masterdata/currencies"
	"github.com/daftar-erp/daftar/internal/masterdata/doctypes"
	"github.com/daftar-erp/daftar/internal/masterdata/organization"
	"github.com/daftar-erp/daftar/internal/masterdata/structures"
	"github.com/daftar-erp/daftar/internal/observability"
	"github.com/daftar-erp/daftar/internal/parties"
	"github.com/daftar-erp/daftar/internal/rbac"
	"github.com/daftar-erp/daftar/internal/shared"
	"github.com/daftar-erp/daftar/internal/users"
	"github.com/daftar-erp/daftar/internal/vouchers"
	"github.com/daftar-erp/daftar/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler         *auth.Handler
	LedgersHandler      *ledgers.Handler
	DetailsHandler      *details.Handler
	VouchersHandler     *vouchers.Handler
	CurrenciesHandler   *currencies.Handler
	StructuresHandler   *structures.Handler
	AccountsHandler     *accounts.Handler
	DocTypesHandler     *doctypes.Handler
	BranchesHandler     *branches.Handler
	OrganizationHandler *organization.Handler
	PartiesHandler      *parties.Handler
	UsersHandler        *users.Handler
	RolesHandler        *rbac.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/ledgers", params.LedgersHandler.MountRoutes)
	r.Route("/details", params.DetailsHandler.MountRoutes)
	r.Route("/vouchers", params.VouchersHandler.MountRoutes)
	r.Route("/masterdata", func(r chi.Router) {
		r.Route("/currencies", params.CurrenciesHandler.MountRoutes)
		r.Route("/structures", params.StructuresHandler.MountRoutes)
		r.Route("/accounts", params.AccountsHandler.MountRoutes)
		r.Route("/doctypes", params.DocTypesHandler.MountRoutes)
		r.Route("/branches", params.BranchesHandler.MountRoutes)
		r.Route("/organization", params.OrganizationHandler.MountRoutes)
	})
	r.Route("/parties", params.PartiesHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
