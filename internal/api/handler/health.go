package handler

import (
	"net/http"
	"time"

	"askpdf/internal/api/response"
	"askpdf/internal/repository/postgres"
)

// HealthCheck returns service liveness.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyCheck verifies the database is reachable.
func ReadyCheck(db *postgres.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		response.OK(w, map[string]string{"status": "ready"})
	}
}
