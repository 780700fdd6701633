package main

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// isLoopback reports whether the request arrived over the loopback
// interface. RemoteAddr usually carries host:port but can degrade to a
// bare host.
func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return host == "127.0.0.1" || host == "::1" || host == "localhost"
}

// shutdownHandler stops the engine on request from the desktop shell.
// The token is read through the atomic on every call so a rotation over
// the API takes effect here without a restart.
func shutdownHandler(token *atomic.Value, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopback(r.RemoteAddr) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		want, _ := token.Load().(string)
		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || want == "" || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Reply before shutting down; Shutdown waits on in-flight
		// requests, this one included.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}
