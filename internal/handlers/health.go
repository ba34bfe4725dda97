package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"studiosite/internal/respond"
)

// Pinger reports whether a dependency is reachable. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health handles GET /health. With a database configured, an unreachable
// database answers 503.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check: database unreachable", "error", err)
				respond.JSON(w, http.StatusServiceUnavailable, map[string]any{
					"status":    "UNAVAILABLE",
					"timestamp": now,
				})
				return
			}
		}
		respond.JSON(w, http.StatusOK, map[string]any{"status": "OK", "timestamp": now})
	}
}
