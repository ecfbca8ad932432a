package rest

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the database is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

const healthPingTimeout = 2 * time.Second

func healthHandler(db Pinger, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, state, code := "OK", "connected", http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if db == nil || db.PingContext(ctx) != nil {
			status, state, code = "DEGRADED", "disconnected", http.StatusServiceUnavailable
		}

		writeJSON(w, code, envelope{
			"status":    status,
			"timestamp": now().UTC().Format(time.RFC3339),
			"database":  state,
		})
	}
}

func testHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "API is working"})
}
