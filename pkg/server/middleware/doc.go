// Package middleware provides the HTTP middleware that decides who a request
// comes from and whether it may reach its handler.
//
// IdentityResolver runs once for every request. It reads a bearer token,
// verifies it, and attaches the identity to the request context. A missing or
// invalid token never fails the request; the request simply has no identity.
//
// Route handlers are then wrapped with Authorizer.Require and one of the
// predicates in this package:
//
//	auth := middleware.NewAuthorizer(membershipStore, auditLogger, 5*time.Second)
//	r.Handle("/users", auth.Require(middleware.PrivilegedOnly)(listUsers))
//	r.Handle("/databases/{databaseId}", auth.Require(auth.ResourceMember("databaseId"))(getDatabase))
//
// A denied predicate yields 401. A storage failure during a membership lookup
// yields 500 and is never reported as a denial.
package middleware
