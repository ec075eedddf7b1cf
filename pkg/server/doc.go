// Package server provides the HTTP server for the dbhub API.
//
// The server uses gorilla/mux for routing. Every request passes through the
// request logger and identity resolution; each route is then wrapped with the
// authorization predicate it needs.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, server.NewGormStores(db, cfg.BcryptCost), tokens, validator, auditLogger)
//	endpoints.RegisterAll(srv)
//	log.Fatal(srv.Start())
//
// # Components
//
// The Server struct holds:
//
//   - Router: HTTP request router
//   - Tokens: session token issuing and verification
//   - Authorizer: turns predicates into route middleware
//   - Validator: request body schemas
//   - Audit: RFC5424 audit logger
//   - Stores: storage interfaces used by the handlers
package server
