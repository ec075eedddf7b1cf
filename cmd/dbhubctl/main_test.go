package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/dbhub/pkg/config"
)

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	steps, err = parseSteps([]string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)

	for _, bad := range []string{"0", "-1", "two"} {
		_, err := parseSteps([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestMigrationsRequireURL(t *testing.T) {
	called := false
	err := withMigrator("", io.Discard, func(*migrator) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, errMissingDatabaseURL)
	assert.False(t, called)
}

func TestPendingVersions(t *testing.T) {
	src, err := iofs.New(fstest.MapFS{
		"1_users.up.sql":       {Data: []byte("SELECT 1")},
		"1_users.down.sql":     {Data: []byte("SELECT 1")},
		"2_databases.up.sql":   {Data: []byte("SELECT 1")},
		"2_databases.down.sql": {Data: []byte("SELECT 1")},
		"5_members.up.sql":     {Data: []byte("SELECT 1")},
		"5_members.down.sql":   {Data: []byte("SELECT 1")},
	}, ".")
	require.NoError(t, err)

	pending, err := pendingVersions(src, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 5}, pending)

	pending, err = pendingVersions(src, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{5}, pending)

	pending, err = pendingVersions(src, 5)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMigrationsDirectoryIsReadable(t *testing.T) {
	t.Setenv("DBHUB_MIGRATIONS_PATH", "../../db/migrations")

	src, err := openMigrationSource()
	require.NoError(t, err)
	defer src.Close()

	pending, err := pendingVersions(src, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 5)
}

func TestReadPassword(t *testing.T) {
	password, err := readPassword(true, strings.NewReader("correct horse\n"))
	require.NoError(t, err)
	assert.Equal(t, "correct horse", password)

	_, err = readPassword(true, strings.NewReader("short\n"))
	assert.Error(t, err)

	t.Setenv("DBHUB_USER_PASSWORD", "from-the-env")
	password, err = readPassword(false, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-the-env", password)
}

func TestIssueToken(t *testing.T) {
	t.Setenv("DBHUB_CONFIG_PATH", t.TempDir())
	t.Setenv("DBHUB_TOKEN_SECRET", "0123456789abcdef0123456789abcdef")

	raw, err := issueToken("alice@example.com", "user")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(raw, "."))

	_, err = issueToken("alice@example.com", "root")
	assert.Error(t, err)
}

func TestCommandsReturnErrors(t *testing.T) {
	t.Setenv("DBHUB_CONFIG_PATH", t.TempDir())
	t.Setenv("DBHUB_TOKEN_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DATABASE_URL", "")

	t.Run("server without a database", func(t *testing.T) {
		assert.ErrorIs(t, serverCmd.RunE(serverCmd, nil), errMissingDatabaseURL)
	})

	t.Run("user create without a database", func(t *testing.T) {
		t.Setenv("DBHUB_USER_PASSWORD", "long-enough-password")
		err := userCreateCmd.RunE(userCreateCmd, []string{"admin@example.com"})
		assert.ErrorIs(t, err, errMissingDatabaseURL)
	})

	t.Run("user create with a short password", func(t *testing.T) {
		t.Setenv("DBHUB_USER_PASSWORD", "short")
		assert.ErrorContains(t, userCreateCmd.RunE(userCreateCmd, []string{"admin@example.com"}), "read password")
	})

	t.Run("token issue writes to the command output", func(t *testing.T) {
		var out bytes.Buffer
		tokenIssueCmd.SetOut(&out)
		t.Cleanup(func() { tokenIssueCmd.SetOut(nil) })

		require.NoError(t, tokenIssueCmd.RunE(tokenIssueCmd, []string{"alice@example.com"}))
		assert.Equal(t, 2, strings.Count(strings.TrimSpace(out.String()), "."))
	})
}

func TestShowConfiguration(t *testing.T) {
	t.Setenv("DBHUB_CONFIG_PATH", t.TempDir())
	t.Setenv("DBHUB_TOKEN_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := config.Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, showConfiguration(&buf, cfg, "text"))
	assert.Contains(t, buf.String(), "token_secret")
	assert.NotContains(t, buf.String(), "0123456789abcdef")

	buf.Reset()
	require.NoError(t, showConfiguration(&buf, cfg, "json"))
	assert.Contains(t, buf.String(), `"attributes"`)

	assert.Error(t, showConfiguration(&buf, cfg, "yaml"))
}

func TestPollHealth(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, pollHealth(context.Background(), io.Discard, srv.URL, 5, time.Millisecond))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	assert.Error(t, pollHealth(context.Background(), io.Discard, srv.URL+"/missing", 0, time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pollHealth(ctx, io.Discard, srv.URL+"/missing", 10, time.Second), context.Canceled)
}
