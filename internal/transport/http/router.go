// Package httptransport is the thin HTTP adapter in front of the sale engine.
// Handlers parse and render; every decision is made by the services.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dealer/internal/platform/metrics"
	dErrors "dealer/pkg/domain-errors"
	"dealer/pkg/platform/httputil"
	"dealer/pkg/platform/middleware/admin"
	authmw "dealer/pkg/platform/middleware/auth"
	"dealer/pkg/platform/middleware/metadata"
	"dealer/pkg/platform/middleware/requesttime"
	"dealer/pkg/requestcontext"
)

const (
	requestTimeout = 30 * time.Second
	healthTimeout  = 2 * time.Second
)

// Deps are the collaborators the router dispatches to. Health and Metrics are optional.
type Deps struct {
	Sales          SaleService
	Classification ClassificationService
	Inventory      InventoryService
	Reports        ReportService
	Audit          AuditReader
	Validator      authmw.JWTValidator
	Health         HealthChecker
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

// Handler serves the engine endpoints.
type Handler struct {
	sales          SaleService
	classification ClassificationService
	inventory      InventoryService
	reports        ReportService
	audit          AuditReader
	health         HealthChecker
	logger         *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		sales:          d.Sales,
		classification: d.Classification,
		inventory:      d.Inventory,
		reports:        d.Reports,
		audit:          d.Audit,
		health:         d.Health,
		logger:         logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(metadata.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(accessLog(logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))
		r.Use(authmw.RequireAuth(d.Validator, logger))

		r.Post("/sales", h.handleRegisterSale)
		r.Get("/sales/{id}", h.handleGetSale)
		r.With(admin.RequireRole(admin.RoleAdmin, logger)).Post("/sales/{id}/cancel", h.handleCancelSale)

		r.Get("/clients/{id}/sales", h.handleListClientSales)
		r.Get("/clients/{id}/classification", h.handleClassify)
		r.Get("/clients/{id}/history", h.handleClientHistory)

		r.Get("/vehicles", h.handleListVehicles)
		r.Get("/vehicles/{id}", h.handleGetVehicle)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/availability", h.handleAvailability)
			r.Get("/brands/top", h.handleTopBrands)
			r.Get("/brands/monthly", h.handleMonthlyBrandSales)
			r.Get("/summary", h.handleMonthSummary)
			r.Get("/aging", h.handleAgingStock)
		})

		r.Route("/audit", func(r chi.Router) {
			r.Use(admin.RequireRole(admin.RoleAdmin, logger))
			r.Get("/records", h.handleAuditRecords)
			r.Get("/errors", h.handleAuditErrors)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError logs and renders a service error. 5xx are logged at error level.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	status := httputil.StatusFor(dErrors.CodeOf(err))
	attrs := []any{
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"actor", requestcontext.Actor(ctx),
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", requestcontext.RequestID(r.Context()),
				"device", requestcontext.Device(r.Context()),
			)
		})
	}
}
