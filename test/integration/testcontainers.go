package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/dbhub/pkg/audit"
	"github.com/doodlesbykumbi/dbhub/pkg/config"
	"github.com/doodlesbykumbi/dbhub/pkg/db"
	"github.com/doodlesbykumbi/dbhub/pkg/schema"
	"github.com/doodlesbykumbi/dbhub/pkg/server"
	"github.com/doodlesbykumbi/dbhub/pkg/server/endpoints"
	"github.com/doodlesbykumbi/dbhub/pkg/token"
)

const testTokenSecret = "integration-secret-0123456789abcdef"

// TestContext is a migrated postgres container plus a dbhub server talking to it.
// The server runs in-process unless DBHUB_BINARY names a dbhubctl binary.
type TestContext struct {
	DB          *gorm.DB
	DatabaseURL string
	ServerURL   string
	Tokens      *token.Service
	HTTPClient  *http.Client

	container testcontainers.Container
	inline    *server.Server
	process   *exec.Cmd
}

func NewTestContext(ctx context.Context) (tc *TestContext, err error) {
	tc = &TestContext{HTTPClient: &http.Client{Timeout: 10 * time.Second}}
	defer func() {
		if err != nil {
			tc.Close(ctx)
			tc = nil
		}
	}()

	if err = tc.startPostgres(ctx); err != nil {
		return
	}
	if err = migrateUp(tc.DatabaseURL); err != nil {
		return tc, fmt.Errorf("migrate: %w", err)
	}
	if tc.DB, err = db.Connect(db.Config{URL: tc.DatabaseURL}); err != nil {
		return
	}
	if tc.Tokens, err = token.New([]byte(testTokenSecret)); err != nil {
		return
	}

	port, err := freePort()
	if err != nil {
		return
	}
	tc.ServerURL = "http://127.0.0.1:" + strconv.Itoa(port)

	if binary := os.Getenv("DBHUB_BINARY"); binary != "" {
		log.Printf("integration: running %s", binary)
		err = tc.startBinary(binary, port)
	} else {
		log.Print("integration: running the server in-process")
		err = tc.startInline(port)
	}
	if err != nil {
		return
	}
	err = tc.awaitHealthy(ctx, 30*time.Second)
	return
}

func (tc *TestContext) startPostgres(ctx context.Context) error {
	c, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("dbhub_test"),
		tcpostgres.WithUsername("dbhub"),
		tcpostgres.WithPassword("dbhub"),
		tcpostgres.BasicWaitStrategies(),
	)
	if c != nil {
		tc.container = c
	}
	if err != nil {
		return fmt.Errorf("start postgres: %w", err)
	}
	tc.DatabaseURL, err = c.ConnectionString(ctx, "sslmode=disable")
	return err
}

func (tc *TestContext) startInline(port int) error {
	validator, err := schema.NewDefaultValidator()
	if err != nil {
		return err
	}
	cfg := &config.Config{
		TokenSecret:   testTokenSecret,
		BindAddress:   "127.0.0.1",
		Port:          port,
		LogLevel:      "warn",
		LogFormat:     "text",
		LookupTimeout: 5,
		BcryptCost:    4,
	}
	tc.inline = server.NewServer(cfg, server.NewGormStores(tc.DB, cfg.BcryptCost), tc.Tokens, validator, audit.NewLogger(io.Discard, false))
	endpoints.RegisterAll(tc.inline)

	go func() {
		if err := tc.inline.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("integration: inline server stopped: %v", err)
		}
	}()
	return nil
}

func (tc *TestContext) startBinary(binary string, port int) error {
	if _, err := os.Stat(binary); err != nil {
		return fmt.Errorf("DBHUB_BINARY: %w", err)
	}
	cmd := exec.Command(binary, "server", "--no-migrate", "-b", "127.0.0.1", "-p", strconv.Itoa(port))
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+tc.DatabaseURL,
		"DBHUB_TOKEN_SECRET="+testTokenSecret,
		"DBHUB_BCRYPT_COST=4",
		"DBHUB_CONFIG_PATH="+os.TempDir(),
	)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}
	tc.process = cmd
	return nil
}

// awaitHealthy polls /health, which only answers 200 once the schema is in place
func (tc *TestContext) awaitHealthy(ctx context.Context, within time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, within)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, tc.ServerURL+"/health", nil)
		if resp, err := tc.HTTPClient.Do(req); err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("server at %s not healthy after %v", tc.ServerURL, within)
		case <-ticker.C:
		}
	}
}

// ResetData empties every table between scenarios
func (tc *TestContext) ResetData() error {
	return tc.DB.Exec(`TRUNCATE database_apps, database_users, apps, databases, users RESTART IDENTITY CASCADE`).Error
}

// Close releases whatever NewTestContext managed to start
func (tc *TestContext) Close(ctx context.Context) {
	if tc.inline != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = tc.inline.Shutdown(shutdownCtx)
		cancel()
	}
	if tc.process != nil && tc.process.Process != nil {
		_ = tc.process.Process.Signal(os.Interrupt)
		_ = tc.process.Wait()
	}
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.container != nil {
		_ = testcontainers.TerminateContainer(tc.container)
	}
}

func migrateUp(dbURL string) error {
	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "db", "migrations")

	m, err := migrate.New("file://"+dir, dbURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}
