package endpoints

import (
	"net/http"
	"strconv"

	"github.com/doodlesbykumbi/dbhub/pkg/audit"
	"github.com/doodlesbykumbi/dbhub/pkg/schema"
	"github.com/doodlesbykumbi/dbhub/pkg/server"
	"github.com/doodlesbykumbi/dbhub/pkg/server/middleware"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

type appRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Version     *string `json:"version"`
}

// RegisterAppsEndpoints registers the app catalogue endpoints
func RegisterAppsEndpoints(s *server.Server) {
	apps := s.Stores.Apps

	s.Protected("/apps", middleware.AuthenticatedOnly, handleListApps(apps)).Methods("GET")
	s.Protected("/apps", middleware.PrivilegedOnly, handleCreateApp(apps, s.Validator, s.Audit)).Methods("POST")
	s.Protected("/apps/{appId}", middleware.AuthenticatedOnly, handleGetApp(apps)).Methods("GET")
	s.Protected("/apps/{appId}", middleware.PrivilegedOnly, handleUpdateApp(apps, s.Validator, s.Audit)).Methods("PUT")
	s.Protected("/apps/{appId}", middleware.PrivilegedOnly, handleDeleteApp(apps, s.Audit)).Methods("DELETE")
}

func handleListApps(apps store.AppsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := apps.ListApps(r.Context())
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleGetApp(apps store.AppsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Var(r, "appId")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid app id")
			return
		}
		app, err := apps.GetApp(r.Context(), id)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, app)
	}
}

func handleCreateApp(apps store.AppsStore, validator *schema.Validator, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appRequest
		if err := validator.Decode(r.Body, schema.AppCreate, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		var description, version string
		if req.Description != nil {
			description = *req.Description
		}
		if req.Version != nil {
			version = *req.Version
		}

		app, err := apps.CreateApp(r.Context(), *req.Name, description, version)
		auditLogger.Log(audit.ChangeEvent{
			Actor:     caller(r).Email,
			ClientIP:  middleware.ClientIP(r),
			Entity:    "app",
			Target:    *req.Name,
			Operation: "create",
			Success:   err == nil,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, app)
	}
}

func handleUpdateApp(apps store.AppsStore, validator *schema.Validator, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Var(r, "appId")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid app id")
			return
		}

		var req appRequest
		if err := validator.Decode(r.Body, schema.AppUpdate, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		app, err := apps.UpdateApp(r.Context(), id, store.AppUpdate{
			Name:        req.Name,
			Description: req.Description,
			Version:     req.Version,
		})
		auditLogger.Log(audit.ChangeEvent{
			Actor:     caller(r).Email,
			ClientIP:  middleware.ClientIP(r),
			Entity:    "app",
			Target:    strconv.FormatInt(id, 10),
			Operation: "update",
			Success:   err == nil,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, app)
	}
}

func handleDeleteApp(apps store.AppsStore, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Var(r, "appId")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid app id")
			return
		}

		err := apps.DeleteApp(r.Context(), id)
		auditLogger.Log(audit.ChangeEvent{
			Actor:     caller(r).Email,
			ClientIP:  middleware.ClientIP(r),
			Entity:    "app",
			Target:    strconv.FormatInt(id, 10),
			Operation: "delete",
			Success:   err == nil,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
