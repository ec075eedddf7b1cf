package middleware

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/doodlesbykumbi/dbhub/pkg/identity"
	"github.com/doodlesbykumbi/dbhub/pkg/logger"
)

const bearerScheme = "bearer"

// TokenVerifier verifies a raw session token and returns its claims
type TokenVerifier interface {
	Verify(raw string) (identity.Claims, error)
}

// IdentityResolver attaches the identity carried by a bearer token to the
// request context
type IdentityResolver struct {
	Verifier TokenVerifier
}

// NewIdentityResolver creates identity resolution middleware
func NewIdentityResolver(v TokenVerifier) *IdentityResolver {
	return &IdentityResolver{Verifier: v}
}

// Middleware resolves the identity and always calls next.
func (ir *IdentityResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := ir.Verifier.Verify(raw)
		if err != nil {
			logger.FromContext(r.Context()).WithError(err).Debug("ignoring unverifiable bearer token")
			next.ServeHTTP(w, r)
			return
		}

		id := identity.FromClaims(claims)
		ctx := identity.Set(r.Context(), id)
		ctx = logger.WithIdentity(ctx, id.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	sep := strings.IndexFunc(header, unicode.IsSpace)
	if sep < 0 || !strings.EqualFold(header[:sep], bearerScheme) {
		return "", false
	}
	raw := strings.TrimSpace(header[sep:])
	if raw == "" {
		return "", false
	}
	return raw, true
}
