// Package health exposes a read-only status endpoint. It reads snapshots of
// the posted-state store and the run marker; a read racing a concurrent
// store write is tolerated, the endpoint is diagnostic only.
package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/BunsoMendoza/dealbot-tech/internal/storage"
)

type status struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	PostedCount int    `json:"posted_count"`
	LastRun     string `json:"last_run,omitempty"`
}

// Handler serves GET /health and responds 404 to every other path.
func Handler(store *storage.Store, markerPath string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		payload := status{
			Status:      "ok",
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			PostedCount: store.Len(),
			LastRun:     storage.LastRun(markerPath),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(payload)
	})
	return mux
}
