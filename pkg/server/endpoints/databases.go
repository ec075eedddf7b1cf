package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/doodlesbykumbi/dbhub/pkg/audit"
	"github.com/doodlesbykumbi/dbhub/pkg/schema"
	"github.com/doodlesbykumbi/dbhub/pkg/server"
	"github.com/doodlesbykumbi/dbhub/pkg/server/middleware"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

type databaseRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// RegisterDatabasesEndpoints registers workspace endpoints
func RegisterDatabasesEndpoints(s *server.Server) {
	databases := s.Stores.Databases
	member := s.Authorizer.ResourceMember("databaseId")

	s.Protected("/databases", middleware.PrivilegedOnly, handleListDatabases(databases)).Methods("GET")
	s.Protected("/databases", middleware.AuthenticatedOnly, handleCreateDatabase(databases, s.Stores.Membership, s.Validator, s.Audit)).Methods("POST")
	s.Protected("/databases/{databaseId}", member, handleGetDatabase(databases)).Methods("GET")
	s.Protected("/databases/{databaseId}", member, handleUpdateDatabase(databases, s.Validator, s.Audit)).Methods("PUT")
	s.Protected("/databases/{databaseId}", member, handleDeleteDatabase(databases, s.Audit)).Methods("DELETE")
}

func handleListDatabases(databases store.DatabasesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := databases.ListDatabases(r.Context())
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleCreateDatabase(databases store.DatabasesStore, members store.MembershipStore, validator *schema.Validator, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req databaseRequest
		if err := validator.Decode(r.Body, schema.DatabaseCreate, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		ownerID, err := callerID(r, members)
		if errors.Is(err, store.ErrNotFound) {
			// the token outlived its account
			respondWithError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
			return
		}
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		description := ""
		if req.Description != nil {
			description = *req.Description
		}
		database, err := databases.CreateDatabase(r.Context(), ownerID, *req.Name, description)
		auditLogger.Log(audit.ChangeEvent{
			Actor:     caller(r).Email,
			ClientIP:  middleware.ClientIP(r),
			Entity:    "database",
			Target:    *req.Name,
			Operation: "create",
			Success:   err == nil,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, database)
	}
}

func handleGetDatabase(databases store.DatabasesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := int64Var(r, "databaseId")
		database, err := databases.GetDatabase(r.Context(), id)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, database)
	}
}

func handleUpdateDatabase(databases store.DatabasesStore, validator *schema.Validator, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := int64Var(r, "databaseId")

		var req databaseRequest
		if err := validator.Decode(r.Body, schema.DatabaseUpdate, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		database, err := databases.UpdateDatabase(r.Context(), id, store.DatabaseUpdate{
			Name:        req.Name,
			Description: req.Description,
		})
		auditLogger.Log(audit.ChangeEvent{
			Actor:     caller(r).Email,
			ClientIP:  middleware.ClientIP(r),
			Entity:    "database",
			Target:    strconv.FormatInt(id, 10),
			Operation: "update",
			Success:   err == nil,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, database)
	}
}

func handleDeleteDatabase(databases store.DatabasesStore, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := int64Var(r, "databaseId")

		err := databases.DeleteDatabase(r.Context(), id)
		auditLogger.Log(audit.ChangeEvent{
			Actor:     caller(r).Email,
			ClientIP:  middleware.ClientIP(r),
			Entity:    "database",
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
