// Package identity provides the authenticated identity carried by dbhub requests.
//
// An Identity is resolved once per request from a bearer token and stored in
// the request context. Authorization code reads it back with Get.
//
// # Basic Usage
//
//	// Build an identity from verified token claims
//	id := identity.FromClaims(claims)
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
//
// # Identity vs Claims
//
// Claims are the fixed payload of a token: the subject email and the role.
// An Identity adds request-scoped data that tokens never carry, most notably
// the numeric user ID, which stays zero until something resolves it.
package identity
