package httpapi

import (
	"database/sql"
	"net/http"

	"govsignal-engine/internal/stats"
)

type StatsHandler struct {
	DB *sql.DB
}

func (h StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep, err := stats.Collect(r.Context(), h.DB)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, rep)
}
