package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/dbhub/pkg/server"
	"github.com/doodlesbykumbi/dbhub/pkg/server/middleware"
)

// WhoamiResponse represents the response from the /whoami endpoint
type WhoamiResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RegisterWhoamiEndpoint registers the /whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server) {
	s.Protected("/whoami", middleware.AuthenticatedOnly, handleWhoami()).Methods("GET")
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := caller(r)
		respondWithJSON(w, http.StatusOK, WhoamiResponse{
			Email: id.Email,
			Role:  id.Role.String(),
		})
	}
}
