package ratelimit

import (
	"encoding/json"
	"net/http"

	"warehousenow/middleware/ratelimit/domain"

	"github.com/charmbracelet/log"
)

// StatsHandler serve GET /ratelimit/stats no envelope da API.
func StatsHandler(reader domain.StatsReader, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap, err := reader.Snapshot(r.Context())
		if err != nil {
			if logger != nil {
				logger.Error("rate limit stats unavailable", "err", err)
			}
			reject(w, http.StatusServiceUnavailable, "Rate limit stats unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": snap})
	})
}
