// Package admin gates administrative capabilities such as cancelling a sale.
package admin

import (
	"log/slog"
	"net/http"

	"dealer/pkg/platform/httputil"
	"dealer/pkg/requestcontext"
)

// RoleAdmin is the role allowed to cancel sales.
const RoleAdmin = "admin"

// RequireRole must run after auth.RequireAuth.
func RequireRole(role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !requestcontext.HasRole(ctx, role) {
				logger.WarnContext(ctx, "forbidden - missing role",
					"role", role,
					"actor", requestcontext.Actor(ctx),
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteErrorCode(w, http.StatusForbidden, "forbidden", role+" role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
