package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/dbhub/pkg/identity"
	"github.com/doodlesbykumbi/dbhub/pkg/logger"
	"github.com/doodlesbykumbi/dbhub/pkg/schema"
	"github.com/doodlesbykumbi/dbhub/pkg/server/middleware"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

func respondWithError(w http.ResponseWriter, code int, errCode, message string) {
	middleware.WriteError(w, code, errCode, message)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	middleware.WriteJSON(w, code, payload)
}

// respondWithStoreError maps store and validation errors onto HTTP statuses
func respondWithStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, "invalid_request", verr.Error())
	case errors.Is(err, store.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, store.ErrConflict):
		respondWithError(w, http.StatusConflict, "conflict", "already exists")
	case errors.Is(err, store.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	default:
		logger.FromContext(r.Context()).WithError(err).Error("request failed")
		respondWithError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// caller returns the identity attached by the identity middleware
func caller(r *http.Request) *identity.Identity {
	id, _ := identity.Get(r.Context())
	return id
}

// callerID resolves the numeric id of the calling account
func callerID(r *http.Request, members store.MembershipStore) (int64, error) {
	id := caller(r)
	if !id.Authenticated() {
		return 0, store.ErrNotFound
	}
	return members.UserIDByEmail(r.Context(), id.Email)
}

func int64Var(r *http.Request, name string) (int64, bool) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, false
	}
	return middleware.ParseResourceID(raw)
}
