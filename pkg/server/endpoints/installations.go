package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/doodlesbykumbi/dbhub/pkg/audit"
	"github.com/doodlesbykumbi/dbhub/pkg/schema"
	"github.com/doodlesbykumbi/dbhub/pkg/server"
	"github.com/doodlesbykumbi/dbhub/pkg/server/middleware"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

type installationRequest struct {
	Config json.RawMessage `json:"config"`
}

// RegisterInstallationsEndpoints registers app installation endpoints. The
// target database comes from the database-id header.
func RegisterInstallationsEndpoints(s *server.Server) {
	member := s.Authorizer.ResourceMember("databaseId")
	installs := s.Stores.Installations

	s.Protected("/installations", member, handleListInstallations(installs)).Methods("GET")
	s.Protected("/installations/{appId}", member, handleInstall(installs, s.Validator, s.Audit)).Methods("POST")
	s.Protected("/installations/{appId}", member, handleUninstall(installs, s.Audit)).Methods("DELETE")
}

// headerDatabaseID reads the database id already validated by the predicate
func headerDatabaseID(r *http.Request) int64 {
	id, _ := middleware.ParseResourceID(r.Header.Get(middleware.DatabaseIDHeader))
	return id
}

func handleListInstallations(installs store.InstallationsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := installs.ListInstallations(r.Context(), headerDatabaseID(r))
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleInstall(installs store.InstallationsStore, validator *schema.Validator, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		databaseID := headerDatabaseID(r)
		appID, ok := int64Var(r, "appId")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid app id")
			return
		}

		var req installationRequest
		if err := validator.Decode(r.Body, schema.Installation, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		installation, err := installs.Install(r.Context(), databaseID, appID, req.Config)
		auditLogger.Log(audit.ChangeEvent{
			Actor:     caller(r).Email,
			ClientIP:  middleware.ClientIP(r),
			Entity:    "installation",
			Target:    fmt.Sprintf("%d/%d", databaseID, appID),
			Operation: "install",
			Success:   err == nil,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, installation)
	}
}

func handleUninstall(installs store.InstallationsStore, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		databaseID := headerDatabaseID(r)
		appID, ok := int64Var(r, "appId")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid app id")
			return
		}

		err := installs.Uninstall(r.Context(), databaseID, appID)
		auditLogger.Log(audit.ChangeEvent{
			Actor:     caller(r).Email,
			ClientIP:  middleware.ClientIP(r),
			Entity:    "installation",
			Target:    fmt.Sprintf("%d/%d", databaseID, appID),
			Operation: "uninstall",
			Success:   err == nil,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
