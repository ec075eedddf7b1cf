package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/dbhub/pkg/identity"
)

// ErrInvalidSignature indicates the token is tampered, malformed, signed
// with another key, or carries claims outside the fixed shape.
var ErrInvalidSignature = errors.New("invalid token signature")

// ErrEmptySecret is returned by New when no signing secret is configured.
var ErrEmptySecret = errors.New("token signing secret is empty")

const signingAlgorithm = "HS256"

// sessionClaims is the wire form of identity.Claims.
type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens with a fixed secret.
type Service struct {
	secret []byte
	now    func() time.Time
}

// New creates a Service. The secret is copied and never changes afterwards.
func New(secret []byte) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Service{secret: key, now: time.Now}, nil
}

// Issue serializes claims into a signed token.
func (s *Service) Issue(claims identity.Claims) (string, error) {
	if claims.Email == "" {
		return "", errors.New("token: claims must name a subject")
	}
	if !claims.Role.Valid() {
		return "", fmt.Errorf("token: unknown role %q", claims.Role)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: claims.Email,
		Role:  string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and returns the embedded claims.
// Every failure wraps ErrInvalidSignature.
func (s *Service) Verify(raw string) (identity.Claims, error) {
	var sc sessionClaims
	_, err := jwt.ParseWithClaims(raw, &sc, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{signingAlgorithm}))
	if err != nil {
		return identity.Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if sc.Email == "" {
		return identity.Claims{}, fmt.Errorf("%w: missing email claim", ErrInvalidSignature)
	}
	role, err := identity.ParseRole(sc.Role)
	if err != nil {
		return identity.Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return identity.Claims{Email: sc.Email, Role: role}, nil
}
