package httpapi

import (
	"net/http"
	"sync/atomic"

	"govsignal-engine/internal/secrets"
)

type SecretsHandler struct {
	TokenVal *atomic.Value // stores the admin token string
}

type rotateTokenResp struct {
	Token     string `json:"token"`
	Persisted bool   `json:"persisted"`
}

// RotateAdminToken mints a fresh admin token, swaps it live and tries
// to persist it in the OS keychain. Local callers only. persisted is
// false on hosts without a usable keychain; the new token still works
// until the engine restarts.
func (h SecretsHandler) RotateAdminToken(w http.ResponseWriter, r *http.Request) {
	if !isLocal(r.RemoteAddr) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "local clients only")
		return
	}

	tok, err := secrets.NewToken(32)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "token_mint_failed", err.Error())
		return
	}

	persisted := secrets.SetAdminToken(tok) == nil
	h.TokenVal.Store(tok)

	writeJSON(w, rotateTokenResp{Token: tok, Persisted: persisted})
}
