package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with defaults sized for this service. Document
// and selfie uploads run to 32MB of multipart data, so the read timeout
// allows slow mobile links to finish a body that a header-only timeout
// would cut off.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}
}
