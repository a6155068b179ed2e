package httpserver

import (
	"net/http"
	"time"

	"dealer/internal/platform/config"
)

const readHeaderTimeout = 5 * time.Second

// New builds the HTTP server for the sale API. Zero timeouts in cfg leave
// the net/http defaults in place.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
