package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"govsignal-engine/internal/store"
)

type SignalsHandler struct {
	DB *sql.DB
}

func (h SignalsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", 400)
			return
		}
		limit = n
	}

	sigs, err := store.ListSignals(r.Context(), h.DB, store.ListSignalsOpts{
		Group:  q.Get("group"),
		Status: q.Get("status"),
		Sort:   q.Get("sort"),
		Window: q.Get("window"),
		Limit:  limit,
	})
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, sigs)
}

func (h SignalsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/signals/"))
	if id == "" {
		http.Error(w, "missing id", 400)
		return
	}

	rec, err := store.GetSignal(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, rec)
}
