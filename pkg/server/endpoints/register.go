package endpoints

import (
	"github.com/doodlesbykumbi/dbhub/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterUsersEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
	RegisterDatabasesEndpoints(srv)
	RegisterMembersEndpoints(srv)
	RegisterAppsEndpoints(srv)
	RegisterInstallationsEndpoints(srv)
}
