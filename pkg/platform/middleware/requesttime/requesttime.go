// Package requesttime provides middleware for request-scoped time.
// All timestamps written while serving one request (sale dates, audit rows)
// use the same instant.
package requesttime

import (
	"net/http"
	"time"

	"dealer/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
