package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"
)

// Pinger is anything that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Component is the state of one dependency.
type Component struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health represents the health check response structure.
// It includes the overall status, timestamp, and watchlist storage health.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Storage   Component `json:"storage"`
}

// Check returns an HTTP handler that verifies the watchlist storage is
// reachable. It answers 503 with status "degraded" when it is not.
func Check(storage Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := Health{
			Status:    "ok",
			Timestamp: time.Now(),
		}

		if err := storage.Ping(ctx); err != nil {
			logger.Error("Storage health check failed", slog.Any("error", err))
			health.Status = "degraded"
			health.Storage.Status = "error"
			health.Storage.Message = "Storage ping failed"
			writeHealth(w, health, http.StatusServiceUnavailable, logger)
			return
		}

		health.Storage.Status = "ok"
		writeHealth(w, health, http.StatusOK, logger)
	}
}

// writeHealth writes the health check response to the HTTP response writer.
func writeHealth(w http.ResponseWriter, health Health, status int, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		logger.Error("Failed to encode health response", slog.Any("error", err))
	}
}
