package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux builds the API routes. /shutdown is not here; main attaches
// it because the handler needs the server it is asked to stop.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Health
	hh := HealthHandler{DB: d.DB}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Signals
	sh := SignalsHandler{DB: d.DB}
	mux.HandleFunc("/signals", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.List,
	}))
	mux.HandleFunc("/signals/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.GetByPath, // expects /signals/{sourceIdentifier}
	}))

	// Stats
	st := StatsHandler{DB: d.DB}
	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: st.Get,
	}))

	// Sources
	so := SourcesHandler{Registry: d.Registry}
	mux.HandleFunc("/sources", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: so.List,
	}))

	// Pipeline runs
	rh := RunHandler{Pipe: d.Pipe}
	mux.HandleFunc("/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: requireToken(d.TokenVal, rh.Run),
	}))
	mux.HandleFunc("/run/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Status,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: requireToken(d.TokenVal, ch.Put),
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use TokenVal, NOT a snapshot token)
	se := SecretsHandler{TokenVal: d.TokenVal}
	mux.HandleFunc("/secrets/admin-token", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: se.RotateAdminToken,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Database maintenance
	dh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))

	// Prometheus scrape surface
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
