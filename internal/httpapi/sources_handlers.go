package httpapi

import (
	"net/http"

	"govsignal-engine/internal/registry"
)

type SourcesHandler struct {
	Registry registry.Registry
}

// List returns every configured source with its operational state
// (error counts, last fetch times) attached.
func (h SourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	srcs, err := h.Registry.AllSources(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, srcs)
}
