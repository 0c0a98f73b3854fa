// Package storefront composes the catalog and purchase services into the
// single HTTP surface the storefront exposes.
package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Heetpatel219/GameLibrary/internal/catalog"
	"github.com/Heetpatel219/GameLibrary/internal/identity"
	"github.com/Heetpatel219/GameLibrary/internal/purchase"
	"github.com/Heetpatel219/GameLibrary/pkg/kit"
)

type Deps struct {
	Catalog  *catalog.Server
	Purchase *purchase.Server
	Verifier *identity.Verifier
}

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// Checkout submissions per client IP per window. Zero disables the
	// limiter.
	PurchaseLimit         int
	PurchaseWindowSeconds int
}

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Get("/games", deps.Catalog.ListHandler())
	r.Get("/games/{id}", deps.Catalog.GetHandler())

	r.Group(func(pr chi.Router) {
		pr.Use(identity.Middleware(deps.Verifier, httpDeps.Log))

		pr.Get("/purchases", deps.Purchase.ListHandler())

		if httpDeps.PurchaseLimit > 0 {
			limiter := kit.NewIPRateLimiter(httpDeps.PurchaseLimit, httpDeps.PurchaseWindowSeconds)
			pr.With(limiter.Middleware).Post("/purchases", deps.Purchase.CreateHandler())
		} else {
			pr.Post("/purchases", deps.Purchase.CreateHandler())
		}
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := deps.Catalog.Store.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed: catalog", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready")
			return
		}
		if err := deps.Purchase.Store.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed: purchase", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
