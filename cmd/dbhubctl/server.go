package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbhub/pkg/audit"
	"github.com/doodlesbykumbi/dbhub/pkg/config"
	"github.com/doodlesbykumbi/dbhub/pkg/db"
	"github.com/doodlesbykumbi/dbhub/pkg/logger"
	"github.com/doodlesbykumbi/dbhub/pkg/schema"
	"github.com/doodlesbykumbi/dbhub/pkg/server"
	"github.com/doodlesbykumbi/dbhub/pkg/server/endpoints"
	"github.com/doodlesbykumbi/dbhub/pkg/token"
)

const shutdownTimeout = 10 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the dbhub application server",
	Long: `Run the dbhub application server.

DBHUB_TOKEN_SECRET and DATABASE_URL must be set, in the environment or in
the config file. Pending migrations are applied on startup unless
--no-migrate is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind-address") {
			cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if cfg.DatabaseURL == "" {
			return errMissingDatabaseURL
		}
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		return runServer(cmd.Context(), cfg, !noMigrate)
	},
}

func runServer(ctx context.Context, cfg *config.Config, migrateFirst bool) error {
	logger.InitLogger(cfg.LogLevel, cfg.LogFormat)
	log := logger.Default()

	if migrateFirst {
		log.Info("running database migrations")
		if err := withMigrator(cfg.DatabaseURL, os.Stdout, (*migrator).up); err != nil {
			return err
		}
	}

	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, Debug: cfg.LogLevel == "debug"})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	tokens, err := token.New(cfg.Secret())
	if err != nil {
		return err
	}
	validator, err := schema.NewDefaultValidator()
	if err != nil {
		return err
	}

	s := server.NewServer(
		cfg,
		server.NewGormStores(database, cfg.BcryptCost),
		tokens,
		validator,
		audit.NewLogger(os.Stdout, cfg.AuditEnabled),
	)
	endpoints.RegisterAll(s)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("address", cfg.Addr()).Info("running server")
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().IntP("port", "p", 8000, "server listen port (overrides PORT)")
	serverCmd.Flags().StringP("bind-address", "b", "0.0.0.0", "server bind address (overrides BIND_ADDRESS)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}
