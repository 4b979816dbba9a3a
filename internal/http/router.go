// Package httpapi assembles the HTTP surface: middleware chain, API routes,
// health and metrics endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "confpaper/internal/audit/handler"
	paperhandler "confpaper/internal/paper/handler"
	"confpaper/internal/platform/metrics"
	reviewhandler "confpaper/internal/review/handler"
	"confpaper/pkg/platform/httputil"
	"confpaper/pkg/platform/middleware/admin"
	"confpaper/pkg/platform/middleware/auth"
	"confpaper/pkg/platform/middleware/metadata"
	"confpaper/pkg/platform/middleware/request"
	"confpaper/pkg/platform/middleware/requesttime"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the components the router mounts. Revocations, Gatherer and
// Audit may be nil.
type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.HTTP
	Gatherer    prometheus.Gatherer
	Validator   auth.JWTValidator
	Revocations auth.TokenRevocationChecker
	Papers      *paperhandler.Handler
	Reviews     *reviewhandler.Handler
	Audit       *audithandler.Handler
	Checks      map[string]HealthCheck
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(d.Logger))
	r.Use(request.Logger(d.Logger))
	r.Use(metadata.ClientMetadata)
	r.Use(d.Metrics.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", healthHandler(d.Checks))
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.RequireAuth(d.Validator, d.Revocations, d.Logger))
		d.Papers.Register(api)
		d.Reviews.Register(api)

		api.Route("/admin", func(adm chi.Router) {
			adm.Use(admin.RequirePrivileged(d.Logger))
			d.Papers.RegisterAdmin(adm)
			d.Reviews.RegisterAdmin(adm)
			if d.Audit != nil {
				d.Audit.RegisterAdmin(adm)
			}
		})
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := check(ctx); err != nil {
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
