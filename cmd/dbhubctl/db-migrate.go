package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var errMissingDatabaseURL = errors.New("DATABASE_URL is required")

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply every pending schema migration.

The users, databases, apps and membership tables must exist before the
server can answer any membership check.

Example:
  dbhubctl db migrate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConfiguredMigrator(cmd.OutOrStdout(), (*migrator).up)
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back schema migrations",
	Long: `Roll back the most recent schema migrations (default: 1).

Example:
  dbhubctl db down      # one migration
  dbhubctl db down 3    # three migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := parseSteps(args)
		if err != nil {
			return err
		}
		return withConfiguredMigrator(cmd.OutOrStdout(), func(m *migrator) error {
			return m.down(steps)
		})
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConfiguredMigrator(cmd.OutOrStdout(), (*migrator).status)
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd, dbMigrateDownCmd, dbMigrateStatusCmd)
}

// parseSteps reads the optional rollback count
func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps < 1 {
		return 0, fmt.Errorf("steps must be a positive integer, got %q", args[0])
	}
	return steps, nil
}

// migrator pairs a migrate instance with the source it reads from, so that
// status can walk the source for versions not yet applied.
type migrator struct {
	m   *migrate.Migrate
	src source.Driver
	out io.Writer
}

func withMigrator(dbURL string, out io.Writer, fn func(*migrator) error) error {
	if dbURL == "" {
		return errMissingDatabaseURL
	}
	src, err := openMigrationSource()
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance(migrationSourceName, src, dbURL)
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("connect for migrations: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	return fn(&migrator{m: m, src: src, out: out})
}

func withConfiguredMigrator(out io.Writer, fn func(*migrator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return withMigrator(cfg.DatabaseURL, out, fn)
}

// current returns the applied version, zero when nothing has been applied
func (mg *migrator) current() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (mg *migrator) up() error {
	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintln(mg.out, "schema is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	version, _, err := mg.current()
	if err != nil {
		return err
	}
	fmt.Fprintf(mg.out, "schema at version %d\n", version)
	return nil
}

func (mg *migrator) down(steps int) error {
	if err := mg.m.Steps(-steps); err != nil {
		return fmt.Errorf("roll back %d: %w", steps, err)
	}
	version, _, err := mg.current()
	if err != nil {
		return err
	}
	if version == 0 {
		fmt.Fprintln(mg.out, "all migrations rolled back")
		return nil
	}
	fmt.Fprintf(mg.out, "schema at version %d\n", version)
	return nil
}

func (mg *migrator) status() error {
	version, dirty, err := mg.current()
	if err != nil {
		return err
	}
	pending, err := pendingVersions(mg.src, version)
	if err != nil {
		return err
	}
	fmt.Fprintf(mg.out, "applied: %d\npending: %d\n", version, len(pending))
	for _, v := range pending {
		fmt.Fprintf(mg.out, "  %d\n", v)
	}
	if dirty {
		fmt.Fprintln(os.Stderr, "warning: schema is dirty, fix the failed migration and force the version")
	}
	return nil
}

// pendingVersions lists the source versions greater than applied, in order
func pendingVersions(src source.Driver, applied uint) ([]uint, error) {
	v, err := src.First()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pending []uint
	for {
		if v > applied {
			pending = append(pending, v)
		}
		v, err = src.Next(v)
		if errors.Is(err, os.ErrNotExist) {
			return pending, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
