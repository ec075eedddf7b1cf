package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/dbhub/pkg/audit"
	"github.com/doodlesbykumbi/dbhub/pkg/model"
	"github.com/doodlesbykumbi/dbhub/pkg/schema"
	"github.com/doodlesbykumbi/dbhub/pkg/server"
	"github.com/doodlesbykumbi/dbhub/pkg/server/middleware"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

type memberAddRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RegisterMembersEndpoints registers membership administration endpoints
func RegisterMembersEndpoints(s *server.Server) {
	member := s.Authorizer.ResourceMember("databaseId")

	s.Protected("/databases/{databaseId}/users", member, handleListMembers(s.Stores.Members)).Methods("GET")
	s.Protected("/databases/{databaseId}/users", member, handleAddMember(s.Stores.Members, s.Stores.Membership, s.Validator, s.Audit)).Methods("POST")
	s.Protected("/databases/{databaseId}/users/{userId}", member, handleRemoveMember(s.Stores.Members, s.Audit)).Methods("DELETE")
}

func handleListMembers(members store.MembersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		databaseID, _ := int64Var(r, "databaseId")
		list, err := members.ListMembers(r.Context(), databaseID)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleAddMember(members store.MembersStore, lookup store.MembershipStore, validator *schema.Validator, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		databaseID, _ := int64Var(r, "databaseId")

		var req memberAddRequest
		if err := validator.Decode(r.Body, schema.MemberAdd, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		if req.Role == "" {
			req.Role = model.MemberRoleMember
		}

		userID, err := lookup.UserIDByEmail(r.Context(), req.Email)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		err = members.AddMember(r.Context(), databaseID, userID, req.Role)
		auditLogger.Log(audit.MemberEvent{
			Actor:      caller(r).Email,
			ClientIP:   middleware.ClientIP(r),
			DatabaseID: databaseID,
			UserID:     userID,
			Operation:  "add",
			Success:    err == nil,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, model.DatabaseUser{
			UserID:     userID,
			DatabaseID: databaseID,
			Role:       req.Role,
		})
	}
}

func handleRemoveMember(members store.MembersStore, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		databaseID, _ := int64Var(r, "databaseId")
		userID, ok := int64Var(r, "userId")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid_request", "invalid user id")
			return
		}

		err := members.RemoveMember(r.Context(), databaseID, userID)
		auditLogger.Log(audit.MemberEvent{
			Actor:      caller(r).Email,
			ClientIP:   middleware.ClientIP(r),
			DatabaseID: databaseID,
			UserID:     userID,
			Operation:  "remove",
			Success:    err == nil,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
