package endpoints

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/dbhub/pkg/audit"
	"github.com/doodlesbykumbi/dbhub/pkg/config"
	"github.com/doodlesbykumbi/dbhub/pkg/identity"
	"github.com/doodlesbykumbi/dbhub/pkg/schema"
	"github.com/doodlesbykumbi/dbhub/pkg/server"
	"github.com/doodlesbykumbi/dbhub/pkg/server/middleware"
	"github.com/doodlesbykumbi/dbhub/pkg/token"
)

// testEnv is a server wired to testify mocks
type testEnv struct {
	srv        *server.Server
	users      *MockUsersStore
	databases  *MockDatabasesStore
	membership *MockMembershipStore
	apps       *MockAppsStore
	installs   *MockInstallationsStore
	health     *MockHealthStore
	auditBuf   *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:      &MockUsersStore{},
		databases:  &MockDatabasesStore{},
		membership: &MockMembershipStore{},
		apps:       &MockAppsStore{},
		installs:   &MockInstallationsStore{},
		health:     &MockHealthStore{},
		auditBuf:   &bytes.Buffer{},
	}

	tokens, err := token.New([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	validator, err := schema.NewDefaultValidator()
	require.NoError(t, err)

	cfg := &config.Config{
		TokenSecret:   "0123456789abcdef0123456789abcdef",
		BindAddress:   "127.0.0.1",
		Port:          0,
		LookupTimeout: 1,
	}

	env.srv = server.NewServer(cfg, server.Stores{
		Users:         env.users,
		Databases:     env.databases,
		Membership:    env.membership,
		Members:       env.membership,
		Apps:          env.apps,
		Installations: env.installs,
		Health:        env.health,
	}, tokens, validator, audit.NewLogger(env.auditBuf, true))
	RegisterAll(env.srv)

	t.Cleanup(func() {
		env.users.AssertExpectations(t)
		env.databases.AssertExpectations(t)
		env.membership.AssertExpectations(t)
		env.apps.AssertExpectations(t)
		env.installs.AssertExpectations(t)
		env.health.AssertExpectations(t)
	})
	return env
}

// bearer issues a token for email/role
func (e *testEnv) bearer(t *testing.T, email string, role identity.Role) string {
	t.Helper()
	raw, err := e.srv.Tokens.Issue(identity.Claims{Email: email, Role: role})
	require.NoError(t, err)
	return "Bearer " + raw
}

// do sends a request through the full router
func (e *testEnv) do(method, path, auth, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.srv.Router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error middleware.ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Code
}
