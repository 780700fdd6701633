package httpapi

import (
	"context"
	"net/http"
)

type RunHandler struct {
	Pipe Runner
}

func (h RunHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Pipe.Status())
}

// Run kicks off a cycle in the background. A run already going is
// refused with 409, not queued. Manual triggers bypass the per-source
// frequency gate unless force=0 asks otherwise.
func (h RunHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Pipe.Status().Running {
		WriteJSON(w, http.StatusConflict, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	force := true
	if v := r.URL.Query().Get("force"); v == "0" || v == "false" {
		force = false
	}

	go func() {
		// Outcome lands in Status and on the event hub.
		_, _ = h.Pipe.Run(context.Background(), "manual", force)
	}()

	writeJSON(w, map[string]any{"ok": true})
}
