package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/dbhub/pkg/audit"
	"github.com/doodlesbykumbi/dbhub/pkg/config"
	"github.com/doodlesbykumbi/dbhub/pkg/logger"
	"github.com/doodlesbykumbi/dbhub/pkg/schema"
	"github.com/doodlesbykumbi/dbhub/pkg/server/middleware"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/dbhub/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/dbhub/pkg/token"
)

// Stores groups the storage interfaces used by the handlers
type Stores struct {
	Users         store.UsersStore
	Databases     store.DatabasesStore
	Membership    store.MembershipStore
	Members       store.MembersStore
	Apps          store.AppsStore
	Installations store.InstallationsStore
	Health        store.HealthStore
}

// NewGormStores wires every store to the given database
func NewGormStores(db *gorm.DB, bcryptCost int) Stores {
	membership := gormstore.NewMembershipStore(db)
	return Stores{
		Users:         gormstore.NewUsersStore(db, bcryptCost),
		Databases:     gormstore.NewDatabasesStore(db),
		Membership:    membership,
		Members:       membership,
		Apps:          gormstore.NewAppsStore(db),
		Installations: gormstore.NewInstallationsStore(db),
		Health:        gormstore.NewHealthStore(db),
	}
}

type Server struct {
	Config     *config.Config
	Router     *mux.Router
	Tokens     *token.Service
	Authorizer *middleware.Authorizer
	Validator  *schema.Validator
	Audit      *audit.Logger
	Stores     Stores
	srv        *http.Server
}

func NewServer(
	cfg *config.Config,
	stores Stores,
	tokens *token.Service,
	validator *schema.Validator,
	auditLogger *audit.Logger,
) *Server {
	router := mux.NewRouter()
	router.Use(logger.Middleware)
	router.Use(middleware.NewIdentityResolver(tokens).Middleware)

	s := &Server{
		Config:     cfg,
		Router:     router,
		Tokens:     tokens,
		Authorizer: middleware.NewAuthorizer(stores.Membership, auditLogger, cfg.Lookup()),
		Validator:  validator,
		Audit:      auditLogger,
		Stores:     stores,
	}

	s.srv = &http.Server{
		Handler:      s.Handler(),
		Addr:         cfg.Addr(),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s
}

// Handler returns the router wrapped with recovery, access logging and CORS
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router
	if len(s.Config.CORSAllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.Config.CORSAllowedOrigins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.DatabaseIDHeader}),
		)(h)
	}
	h = handlers.LoggingHandler(os.Stdout, h)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(logger.Default()))(h)
}

// Protected registers handler at path behind predicate p
func (s *Server) Protected(path string, p middleware.Predicate, handler http.HandlerFunc) *mux.Route {
	return s.Router.Handle(path, s.Authorizer.Require(p)(handler))
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
