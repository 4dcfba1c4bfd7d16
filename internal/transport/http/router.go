package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kycgate/pkg/platform/httputil"
)

// Registrar is anything that mounts its routes on the router. Domain handlers
// implement this so main only decides which handlers exist, not where their
// routes live.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter assembles the top-level router: domain handlers plus the
// unauthenticated operational endpoints.
func NewRouter(handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
