package endpoints

import (
	"errors"
	"net/http"

	"github.com/doodlesbykumbi/dbhub/pkg/logger"
	"github.com/doodlesbykumbi/dbhub/pkg/server"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

// Version is reported by the status endpoint; overridden at build time
var Version = "0.1.0"

// StatusResponse represents the response from /
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthResponse represents the response from /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// RegisterStatusEndpoints registers the status and health endpoints
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/", handleStatus()).Methods("GET")
	s.Router.HandleFunc("/health", handleHealth(s.Stores.Health)).Methods("GET")
}

func handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok", Version: Version})
	}
}

func handleHealth(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.Check(r.Context()); err != nil {
			state := "unreachable"
			if errors.Is(err, store.ErrNotMigrated) {
				state = "not migrated"
			}
			logger.FromContext(r.Context()).WithError(err).Warn("health check failed")
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "error", Database: state})
			return
		}
		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
	}
}
