package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/dbhub/pkg/audit"
	"github.com/doodlesbykumbi/dbhub/pkg/identity"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

// requestAs builds a request carrying id (nil for anonymous) and route vars
func requestAs(id *identity.Identity, vars map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if id != nil {
		req = req.WithContext(identity.Set(req.Context(), id))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

var (
	admin   = &identity.Identity{Email: "admin@example.com", Role: identity.RoleAdmin}
	alice   = &identity.Identity{Email: "alice@example.com", Role: identity.RoleUser}
	guest   = &identity.Identity{Email: "guest@example.com", Role: identity.RoleGuest}
	nobody  *identity.Identity
	allowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
)

func TestAuthenticatedOnly(t *testing.T) {
	assert.NoError(t, AuthenticatedOnly(requestAs(alice, nil)))
	assert.NoError(t, AuthenticatedOnly(requestAs(guest, nil)))
	assert.ErrorIs(t, AuthenticatedOnly(requestAs(nobody, nil)), ErrUnauthorized)
	assert.ErrorIs(t, AuthenticatedOnly(requestAs(&identity.Identity{Role: identity.RoleAdmin}, nil)), ErrUnauthorized)
}

func TestPrivilegedOnly(t *testing.T) {
	tests := []struct {
		name  string
		id    *identity.Identity
		allow bool
		cause string
	}{
		{name: "admin", id: admin, allow: true},
		{name: "standard user", id: alice, cause: CauseNotPrivilege},
		{name: "guest", id: guest, cause: CauseNotPrivilege},
		{name: "anonymous", id: nobody, cause: CauseNoIdentity},
		{name: "role differs in case", id: &identity.Identity{Email: "x@example.com", Role: "Admin"}, cause: CauseNotPrivilege},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PrivilegedOnly(requestAs(tt.id, nil))
			if tt.allow {
				assert.NoError(t, err)
				return
			}
			var denial *DenialError
			require.True(t, errors.As(err, &denial))
			assert.Equal(t, tt.cause, denial.Cause)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestSubjectMatch(t *testing.T) {
	tests := []struct {
		name    string
		id      *identity.Identity
		subject string
		allow   bool
	}{
		{name: "matching subject", id: alice, subject: "alice@example.com", allow: true},
		{name: "different subject", id: alice, subject: "bob@example.com"},
		{name: "differently cased subject", id: alice, subject: "Alice@example.com"},
		{name: "subject with whitespace", id: alice, subject: " alice@example.com"},
		{name: "admin is not the subject", id: admin, subject: "alice@example.com"},
		{name: "anonymous", id: nobody, subject: ""},
	}

	p := SubjectMatch("email")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p(requestAs(tt.id, map[string]string{"email": tt.subject}))
			if tt.allow {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnauthorized)
			}
		})
	}
}

func TestSubjectMatch_MissingRouteVar(t *testing.T) {
	assert.ErrorIs(t, SubjectMatch("email")(requestAs(alice, nil)), ErrUnauthorized)
}

func TestPrivilegedOrSubjectMatch(t *testing.T) {
	tests := []struct {
		name    string
		id      *identity.Identity
		subject string
		allow   bool
	}{
		{name: "standard user on self", id: alice, subject: "alice@example.com", allow: true},
		{name: "standard user on other", id: alice, subject: "bob@example.com"},
		{name: "standard user differently cased", id: alice, subject: "ALICE@example.com"},
		{name: "admin on other", id: admin, subject: "bob@example.com", allow: true},
		{name: "admin on self", id: admin, subject: "admin@example.com", allow: true},
		{name: "anonymous", id: nobody, subject: "bob@example.com"},
	}

	p := PrivilegedOrSubjectMatch("email")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestAs(tt.id, map[string]string{"email": tt.subject})
			err := p(req)
			assert.Equal(t, tt.allow, err == nil, "err = %v", err)

			// For non-admins the outcome equals SubjectMatch alone
			if !tt.id.IsPrivileged() {
				assert.Equal(t, SubjectMatch("email")(req) == nil, err == nil)
			}
		})
	}
}

func TestAnyOf(t *testing.T) {
	allow := func(*http.Request) error { return nil }
	refuse := func(*http.Request) error { return deny("refuse", "nope") }
	broken := func(*http.Request) error { return store.NewDataAccessError("lookup", errors.New("down")) }

	calls := 0
	counting := func(*http.Request) error { calls++; return nil }

	req := requestAs(nil, nil)

	assert.NoError(t, AnyOf(refuse, allow)(req))
	assert.ErrorIs(t, AnyOf(refuse, refuse)(req), ErrUnauthorized)
	assert.ErrorIs(t, AnyOf()(req), ErrUnauthorized)

	err := AnyOf(broken, allow)(req)
	assert.True(t, store.IsDataAccessError(err))
	assert.NotErrorIs(t, err, ErrUnauthorized)

	assert.NoError(t, AnyOf(allow, counting)(req))
	assert.Zero(t, calls)
}

func TestResourceMember(t *testing.T) {
	ctx := mock.Anything

	tests := []struct {
		name     string
		id       *identity.Identity
		vars     map[string]string
		header   string
		setup    func(m *MockMembershipStore)
		allow    bool
		cause    string
		storeErr bool
	}{
		{
			name: "member via route var",
			id:   alice,
			vars: map[string]string{"databaseId": "9"},
			setup: func(m *MockMembershipStore) {
				m.On("UserIDByEmail", ctx, "alice@example.com").Return(int64(5), nil)
				m.On("IsMember", ctx, int64(5), int64(9)).Return(true, nil)
			},
			allow: true,
		},
		{
			name:   "member via header",
			id:     alice,
			header: "9",
			setup: func(m *MockMembershipStore) {
				m.On("UserIDByEmail", ctx, "alice@example.com").Return(int64(5), nil)
				m.On("IsMember", ctx, int64(5), int64(9)).Return(true, nil)
			},
			allow: true,
		},
		{
			name: "not a member",
			id:   alice,
			vars: map[string]string{"databaseId": "9"},
			setup: func(m *MockMembershipStore) {
				m.On("UserIDByEmail", ctx, "alice@example.com").Return(int64(5), nil)
				m.On("IsMember", ctx, int64(5), int64(9)).Return(false, nil)
			},
			cause: CauseNoMembership,
		},
		{
			name:  "anonymous",
			id:    nobody,
			vars:  map[string]string{"databaseId": "9"},
			cause: CauseNoIdentityID,
		},
		{
			name: "unknown account",
			id:   &identity.Identity{Email: "ghost@example.com", Role: identity.RoleUser},
			vars: map[string]string{"databaseId": "9"},
			setup: func(m *MockMembershipStore) {
				m.On("UserIDByEmail", ctx, "ghost@example.com").Return(int64(0), store.ErrNotFound)
			},
			cause: CauseNoIdentityID,
		},
		{
			name:  "no resource id",
			id:    alice,
			cause: CauseNoResourceID,
		},
		{
			name:  "non-numeric resource id",
			id:    alice,
			vars:  map[string]string{"databaseId": "abc"},
			cause: CauseNoResourceID,
		},
		{
			name:   "route var wins over header",
			id:     alice,
			vars:   map[string]string{"databaseId": "nine"},
			header: "9",
			cause:  CauseNoResourceID,
		},
		{
			name: "admin without membership",
			id:   admin,
			vars: map[string]string{"databaseId": "9"},
			setup: func(m *MockMembershipStore) {
				m.On("UserIDByEmail", ctx, "admin@example.com").Return(int64(1), nil)
				m.On("IsMember", ctx, int64(1), int64(9)).Return(false, nil)
			},
			cause: CauseNoMembership,
		},
		{
			name: "membership lookup fails",
			id:   alice,
			vars: map[string]string{"databaseId": "9"},
			setup: func(m *MockMembershipStore) {
				m.On("UserIDByEmail", ctx, "alice@example.com").Return(int64(5), nil)
				m.On("IsMember", ctx, int64(5), int64(9)).
					Return(false, store.NewDataAccessError("is member", errors.New("connection refused")))
			},
			storeErr: true,
		},
		{
			name: "id resolution fails",
			id:   alice,
			vars: map[string]string{"databaseId": "9"},
			setup: func(m *MockMembershipStore) {
				m.On("UserIDByEmail", ctx, "alice@example.com").Return(int64(0), errors.New("connection refused"))
			},
			storeErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockMembershipStore{}
			if tt.setup != nil {
				tt.setup(m)
			}
			a := NewAuthorizer(m, nil, time.Second)

			req := requestAs(tt.id, tt.vars)
			if tt.header != "" {
				req.Header.Set(DatabaseIDHeader, tt.header)
			}

			err := a.ResourceMember("databaseId")(req)
			switch {
			case tt.allow:
				assert.NoError(t, err)
			case tt.storeErr:
				assert.True(t, store.IsDataAccessError(err))
				assert.NotErrorIs(t, err, ErrUnauthorized)
			default:
				var denial *DenialError
				require.True(t, errors.As(err, &denial), "err = %v", err)
				assert.Equal(t, tt.cause, denial.Cause)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestResourceMember_RowRemoved(t *testing.T) {
	members := newMemoryMembershipStore()
	members.addUser("alice@example.com", 5)
	members.add(5, 9)
	a := NewAuthorizer(members, nil, time.Second)
	p := a.ResourceMember("databaseId")

	req := requestAs(alice, map[string]string{"databaseId": "9"})
	assert.NoError(t, p(req))

	members.remove(5, 9)
	assert.ErrorIs(t, p(req), ErrUnauthorized)
}

func TestResourceMember_LookupDeadline(t *testing.T) {
	m := &MockMembershipStore{}
	m.On("UserIDByEmail", mock.Anything, "alice@example.com").Return(int64(5), nil)
	m.On("IsMember", mock.Anything, int64(5), int64(9)).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		}).
		Return(true, nil)

	a := NewAuthorizer(m, nil, 50*time.Millisecond)
	assert.NoError(t, a.ResourceMember("databaseId")(requestAs(alice, map[string]string{"databaseId": "9"})))
}

func TestNewAuthorizer_DefaultTimeout(t *testing.T) {
	a := NewAuthorizer(&MockMembershipStore{}, nil, 0)
	assert.Equal(t, DefaultLookupTimeout, a.lookupTimeout)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body struct {
		Error map[string]string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestRequire(t *testing.T) {
	var auditBuf bytes.Buffer
	auditLogger := audit.NewLogger(&auditBuf, true)

	m := &MockMembershipStore{}
	m.On("UserIDByEmail", mock.Anything, "alice@example.com").Return(int64(5), nil)
	m.On("IsMember", mock.Anything, int64(5), int64(9)).
		Return(false, store.NewDataAccessError("is member", errors.New("connection refused")))
	a := NewAuthorizer(m, auditLogger, time.Second)

	t.Run("allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		a.Require(AuthenticatedOnly)(allowed).ServeHTTP(rec, requestAs(alice, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("denied", func(t *testing.T) {
		auditBuf.Reset()
		rec := httptest.NewRecorder()
		a.Require(PrivilegedOnly)(allowed).ServeHTTP(rec, requestAs(alice, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "unauthorized", decodeError(t, rec)["code"])
		assert.Contains(t, auditBuf.String(), "alice@example.com was denied GET /test by PrivilegedOnly: not privileged")
	})

	t.Run("denial causes look the same to clients", func(t *testing.T) {
		noID := httptest.NewRecorder()
		a.Require(a.ResourceMember("databaseId"))(allowed).ServeHTTP(noID, requestAs(nobody, map[string]string{"databaseId": "9"}))
		noResource := httptest.NewRecorder()
		a.Require(a.ResourceMember("databaseId"))(allowed).ServeHTTP(noResource, requestAs(alice, nil))

		assert.Equal(t, http.StatusUnauthorized, noID.Code)
		assert.Equal(t, noID.Code, noResource.Code)
		assert.Equal(t, noID.Body.String(), noResource.Body.String())
	})

	t.Run("storage failure is a server error", func(t *testing.T) {
		auditBuf.Reset()
		rec := httptest.NewRecorder()
		a.Require(a.ResourceMember("databaseId"))(allowed).
			ServeHTTP(rec, requestAs(alice, map[string]string{"databaseId": "9"}))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "data_access_error", decodeError(t, rec)["code"])
		assert.Empty(t, auditBuf.String())
	})
}

// Requests with no header and requests with a forged token are treated alike.
func TestForgedTokenBehavesLikeNoHeader(t *testing.T) {
	svc := newTokenService(t)
	ir := NewIdentityResolver(svc)
	a := NewAuthorizer(&MockMembershipStore{}, nil, time.Second)

	router := mux.NewRouter()
	router.Use(ir.Middleware)
	router.Handle("/whoami", a.Require(AuthenticatedOnly)(allowed))

	forger, err := newForeignService()
	require.NoError(t, err)
	forged, err := forger.Issue(identity.Claims{Email: "admin@example.com", Role: identity.RoleAdmin})
	require.NoError(t, err)

	plain := httptest.NewRecorder()
	router.ServeHTTP(plain, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	withForged := httptest.NewRecorder()
	router.ServeHTTP(withForged, req)

	assert.Equal(t, http.StatusUnauthorized, plain.Code)
	assert.Equal(t, plain.Code, withForged.Code)
	assert.Equal(t, plain.Body.String(), withForged.Body.String())

	good := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	good.Header.Set("Authorization", "Bearer "+issue(t, svc, "alice@example.com", identity.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, good)
	assert.Equal(t, http.StatusOK, rec.Code)
}
