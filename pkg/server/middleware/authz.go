package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/dbhub/pkg/audit"
	"github.com/doodlesbykumbi/dbhub/pkg/identity"
	"github.com/doodlesbykumbi/dbhub/pkg/logger"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

// DatabaseIDHeader carries the database id for routes without it in the path
const DatabaseIDHeader = "database-id"

// DefaultLookupTimeout bounds membership lookups when none is configured
const DefaultLookupTimeout = 5 * time.Second

// ErrUnauthorized is matched by every denial
var ErrUnauthorized = errors.New("unauthorized")

// Denial causes recorded for diagnostics. Clients always see ErrUnauthorized.
const (
	CauseNoIdentity   = "no identity"
	CauseNotPrivilege = "not privileged"
	CauseNotSubject   = "subject mismatch"
	CauseNoIdentityID = "no identity id"
	CauseNoResourceID = "no resource id"
	CauseNoMembership = "no membership"
)

// DenialError is a predicate denial with its diagnostic cause
type DenialError struct {
	Predicate string
	Cause     string
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrUnauthorized, e.Predicate, e.Cause)
}

func (e *DenialError) Is(target error) bool {
	return target == ErrUnauthorized
}

func deny(predicate, cause string) error {
	return &DenialError{Predicate: predicate, Cause: cause}
}

// Predicate inspects a request. nil allows it, an error matching
// ErrUnauthorized denies it, and a *store.DataAccessError aborts it.
type Predicate func(r *http.Request) error

// AuthenticatedOnly passes when any identity is present
func AuthenticatedOnly(r *http.Request) error {
	id, ok := identity.Get(r.Context())
	if !ok || !id.Authenticated() {
		return deny("AuthenticatedOnly", CauseNoIdentity)
	}
	return nil
}

// PrivilegedOnly passes when the identity holds the admin role
func PrivilegedOnly(r *http.Request) error {
	id, ok := identity.Get(r.Context())
	if !ok || !id.Authenticated() {
		return deny("PrivilegedOnly", CauseNoIdentity)
	}
	if !id.IsPrivileged() {
		return deny("PrivilegedOnly", CauseNotPrivilege)
	}
	return nil
}

// SubjectMatch passes when the identity's email equals the route variable
// param exactly
func SubjectMatch(param string) Predicate {
	return func(r *http.Request) error {
		id, ok := identity.Get(r.Context())
		if !ok || !id.Authenticated() {
			return deny("SubjectMatch", CauseNoIdentity)
		}
		if mux.Vars(r)[param] != id.Email {
			return deny("SubjectMatch", CauseNotSubject)
		}
		return nil
	}
}

// PrivilegedOrSubjectMatch passes for admins and for the subject itself
func PrivilegedOrSubjectMatch(param string) Predicate {
	return AnyOf(PrivilegedOnly, SubjectMatch(param))
}

// AnyOf passes when any of the predicates passes. Predicates are evaluated in
// order; a storage failure stops evaluation and is returned as is.
func AnyOf(predicates ...Predicate) Predicate {
	return func(r *http.Request) error {
		var last error = deny("AnyOf", "no predicates")
		for _, p := range predicates {
			err := p(r)
			if err == nil {
				return nil
			}
			if !errors.Is(err, ErrUnauthorized) {
				return err
			}
			last = err
		}
		return last
	}
}

// Authorizer turns predicates into route middleware and owns the
// dependencies of the membership predicate
type Authorizer struct {
	members       store.MembershipStore
	audit         *audit.Logger
	lookupTimeout time.Duration
}

// NewAuthorizer creates an Authorizer. A zero timeout uses DefaultLookupTimeout.
func NewAuthorizer(members store.MembershipStore, auditLogger *audit.Logger, lookupTimeout time.Duration) *Authorizer {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &Authorizer{
		members:       members,
		audit:         auditLogger,
		lookupTimeout: lookupTimeout,
	}
}

// ResourceMember passes when the identity is a member of the database named
// by route variable param, or by the database-id header when the route has
// no such variable.
func (a *Authorizer) ResourceMember(param string) Predicate {
	return func(r *http.Request) error {
		databaseID, ok := resourceID(r, param)
		if !ok {
			return deny("ResourceMember", CauseNoResourceID)
		}

		id, ok := identity.Get(r.Context())
		if !ok || !id.Authenticated() {
			return deny("ResourceMember", CauseNoIdentityID)
		}

		ctx, cancel := context.WithTimeout(r.Context(), a.lookupTimeout)
		defer cancel()

		// tokens carry only the email, so the account id is looked up per request
		userID, err := a.members.UserIDByEmail(ctx, id.Email)
		if errors.Is(err, store.ErrNotFound) {
			return deny("ResourceMember", CauseNoIdentityID)
		}
		if err != nil {
			return asDataAccessError("resolve identity id", err)
		}

		member, err := a.members.IsMember(ctx, userID, databaseID)
		if err != nil {
			return asDataAccessError("is member", err)
		}
		if !member {
			return deny("ResourceMember", CauseNoMembership)
		}
		return nil
	}
}

// Require returns middleware that runs next only when p passes.
func (a *Authorizer) Require(p Predicate) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := p(r)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}
			a.reject(w, r, err)
		})
	}
}

func (a *Authorizer) reject(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var denial *DenialError
	if errors.As(err, &denial) {
		subject := ""
		if id, ok := identity.Get(r.Context()); ok {
			subject = id.Email
		}
		log.WithField("predicate", denial.Predicate).
			WithField("cause", denial.Cause).
			Info("request denied")
		a.audit.Log(audit.AuthorizationEvent{
			Subject:   subject,
			ClientIP:  ClientIP(r),
			Predicate: denial.Predicate,
			Method:    r.Method,
			Path:      r.URL.Path,
			Cause:     denial.Cause,
		})
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	log.WithError(err).Error("authorization check failed")
	WriteError(w, http.StatusInternalServerError, "data_access_error", "internal server error")
}

// resourceID prefers the route variable and falls back to the header
func resourceID(r *http.Request, param string) (int64, bool) {
	raw, ok := mux.Vars(r)[param]
	if !ok {
		raw = r.Header.Get(DatabaseIDHeader)
	}
	return ParseResourceID(raw)
}

func asDataAccessError(op string, err error) error {
	var dae *store.DataAccessError
	if errors.As(err, &dae) {
		return err
	}
	return store.NewDataAccessError(op, err)
}
