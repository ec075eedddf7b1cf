package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/dbhub/pkg/audit"
	"github.com/doodlesbykumbi/dbhub/pkg/identity"
	"github.com/doodlesbykumbi/dbhub/pkg/logger"
	"github.com/doodlesbykumbi/dbhub/pkg/schema"
	"github.com/doodlesbykumbi/dbhub/pkg/server"
	"github.com/doodlesbykumbi/dbhub/pkg/server/middleware"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
	"github.com/doodlesbykumbi/dbhub/pkg/token"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userUpdateRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// LoginResponse carries a freshly issued session token
type LoginResponse struct {
	Token string `json:"token"`
}

// RegisterUsersEndpoints registers account endpoints
func RegisterUsersEndpoints(s *server.Server) {
	users := s.Stores.Users

	s.Router.HandleFunc("/users/register", handleRegister(users, s.Validator, s.Audit)).Methods("POST")
	s.Router.HandleFunc("/users/login", handleLogin(users, s.Tokens, s.Validator, s.Audit)).Methods("POST")

	s.Protected("/users", middleware.PrivilegedOnly, handleListUsers(users)).Methods("GET")
	s.Protected("/users/{email}", middleware.PrivilegedOrSubjectMatch("email"), handleGetUser(users)).Methods("GET")
	s.Protected("/users/{email}", middleware.SubjectMatch("email"), handleUpdateUser(users, s.Validator, s.Audit)).Methods("PUT")
	s.Protected("/users/{email}", middleware.PrivilegedOrSubjectMatch("email"), handleDeleteUser(users, s.Audit)).Methods("DELETE")
	s.Protected("/users/{email}/databases", middleware.PrivilegedOrSubjectMatch("email"), handleListUserDatabases(s.Stores.Databases)).Methods("GET")
}

func handleRegister(users store.UsersStore, validator *schema.Validator, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := validator.Decode(r.Body, schema.Register, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		user, err := users.CreateUser(r.Context(), store.NewUser{
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
			Role:     identity.RoleUser,
		})
		auditLogger.Log(audit.ChangeEvent{
			Actor:     req.Email,
			ClientIP:  middleware.ClientIP(r),
			Entity:    "user",
			Target:    req.Email,
			Operation: "register",
			Success:   err == nil,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, user)
	}
}

func handleLogin(users store.UsersStore, tokens *token.Service, validator *schema.Validator, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validator.Decode(r.Body, schema.Login, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		event := audit.LoginEvent{Email: req.Email, ClientIP: middleware.ClientIP(r)}

		user, err := users.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, store.ErrInvalidCredentials) {
				event.ErrorMessage = err.Error()
				auditLogger.Log(event)
			}
			respondWithStoreError(w, r, err)
			return
		}

		raw, err := tokens.Issue(identity.Claims{Email: user.Email, Role: identity.Role(user.Role)})
		if err != nil {
			logger.FromContext(r.Context()).WithError(err).Error("failed to issue token")
			respondWithError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}

		event.Success = true
		auditLogger.Log(event)
		respondWithJSON(w, http.StatusOK, LoginResponse{Token: raw})
	}
}

func handleListUsers(users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.ListUsers(r.Context())
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleGetUser(users store.UsersStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := users.GetUser(r.Context(), mux.Vars(r)["email"])
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, user)
	}
}

func handleUpdateUser(users store.UsersStore, validator *schema.Validator, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := mux.Vars(r)["email"]

		var req userUpdateRequest
		if err := validator.Decode(r.Body, schema.UserUpdate, &req); err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		user, err := users.UpdateUser(r.Context(), email, store.UserUpdate{Name: req.Name, Password: req.Password})
		auditLogger.Log(audit.ChangeEvent{
			Actor:     caller(r).Email,
			ClientIP:  middleware.ClientIP(r),
			Entity:    "user",
			Target:    email,
			Operation: "update",
			Success:   err == nil,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, user)
	}
}

func handleDeleteUser(users store.UsersStore, auditLogger *audit.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := mux.Vars(r)["email"]

		err := users.DeleteUser(r.Context(), email)
		auditLogger.Log(audit.ChangeEvent{
			Actor:     caller(r).Email,
			ClientIP:  middleware.ClientIP(r),
			Entity:    "user",
			Target:    email,
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

func handleListUserDatabases(databases store.DatabasesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := databases.ListDatabasesForUser(r.Context(), mux.Vars(r)["email"])
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}
