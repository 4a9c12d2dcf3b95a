package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chromatex/dyehouse/internal/colorkitchen"
	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/importer"
	"github.com/chromatex/dyehouse/internal/ledger"
	"github.com/chromatex/dyehouse/internal/masterdata/designs"
	"github.com/chromatex/dyehouse/internal/masterdata/products"
	"github.com/chromatex/dyehouse/internal/masterdata/suppliers"
	"github.com/chromatex/dyehouse/internal/movement"
	"github.com/chromatex/dyehouse/internal/observability"
	"github.com/chromatex/dyehouse/internal/opname"
	"github.com/chromatex/dyehouse/internal/purchasing"
	"github.com/chromatex/dyehouse/jobs"
	"github.com/chromatex/dyehouse/report"
)

// RouterDeps aggregates the handlers the HTTP server mounts.
type RouterDeps struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	Products     *products.Handler
	Suppliers    *suppliers.Handler
	Designs      *designs.Handler
	Purchasing   *purchasing.Handler
	Movements    *movement.Handler
	ColorKitchen *colorkitchen.Handler
	Opname       *opname.Handler
	Imports      *importer.Handler
	Ledger       *ledger.Handler
	Costing      *costing.Handler
	Jobs         *jobs.Handler
	Reports      *report.Handler
}

// NewRouter assembles the middleware stack and all API routes.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: deps.Logger, Config: deps.Config}) {
		r.Use(mw)
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Route("/products", deps.Products.MountRoutes)
		api.Route("/suppliers", deps.Suppliers.MountRoutes)
		api.Route("/designs", deps.Designs.MountRoutes)
		api.Route("/purchasing", deps.Purchasing.MountRoutes)
		api.Route("/movements", deps.Movements.MountRoutes)
		api.Route("/color-kitchen", deps.ColorKitchen.MountRoutes)
		api.Route("/opname", deps.Opname.MountRoutes)
		api.Route("/imports", deps.Imports.MountRoutes)
		api.Route("/ledger", deps.Ledger.MountRoutes)
		api.Route("/costing", deps.Costing.MountRoutes)
		if deps.Jobs != nil {
			api.Route("/jobs", deps.Jobs.MountRoutes)
		}
		if deps.Reports != nil {
			api.Route("/reports", deps.Reports.MountRoutes)
		}
	})

	return r
}
