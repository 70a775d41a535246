package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
	// RemoteSync is "ok", "degraded", or "disabled". A degraded
	// mirror never makes the service unready: local data stays
	// authoritative.
	RemoteSync string `json:"remote_sync"`
}

func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remote := "disabled"
		if d.Mirror != nil {
			remote = "ok"
			if d.Mirror.Degraded() {
				remote = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		_ = json.NewEncoder(w).Encode(readyzResponse{
			Ready:      true,
			RemoteSync: remote,
		})
	}
}
