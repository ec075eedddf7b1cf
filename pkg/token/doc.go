// Package token issues and verifies dbhub session tokens.
//
// Session tokens are HS256-signed JWTs whose payload is exactly the
// identity claims (email and role) plus an issued-at timestamp. No
// expiration is set: a token stays valid until the signing secret changes.
//
// # Basic Usage
//
//	svc, err := token.New(secret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	raw, err := svc.Issue(identity.Claims{Email: "alice@example.com", Role: identity.RoleUser})
//
//	claims, err := svc.Verify(raw)
//	if errors.Is(err, token.ErrInvalidSignature) {
//	    // tampered, malformed or foreign token
//	}
package token
