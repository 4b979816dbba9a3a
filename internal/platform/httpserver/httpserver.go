package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with the timeouts every listener here uses.
// WriteTimeout is generous because downloads stream whole files.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}
