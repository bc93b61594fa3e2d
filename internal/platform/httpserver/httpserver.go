// Package httpserver constructs the server carrying the registration API.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the server. ReadTimeout leaves room for multipart document
// uploads on slow links; writes stay unbounded because the init view inlines
// attachment content.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		IdleTimeout:       time.Minute,
	}
}
