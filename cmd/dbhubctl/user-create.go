package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbhub/pkg/db"
	"github.com/doodlesbykumbi/dbhub/pkg/identity"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/dbhub/pkg/server/store/gorm"
)

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create a user account",
	Long: `Create a user account.

Accounts registered through the API always receive the standard role. Use
this command to bootstrap the first administrator.

The password is read from the first line of stdin with --password-stdin, or
from the DBHUB_USER_PASSWORD environment variable.

Example:
  dbhubctl user create admin@example.com --password-stdin < admin_password
  dbhubctl user create bob@example.com --role user --name Bob`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roleName, _ := cmd.Flags().GetString("role")
		name, _ := cmd.Flags().GetString("name")
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")

		role, err := identity.ParseRole(roleName)
		if err != nil {
			return err
		}
		password, err := readPassword(fromStdin, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}

		user := store.NewUser{Email: args[0], Name: name, Password: password, Role: role}
		if err := createUser(cmd.Context(), user); err != nil {
			return fmt.Errorf("create user %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s\n", role, args[0])
		return nil
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().String("role", string(identity.RoleAdmin), "system role (admin, user, guest)")
	userCreateCmd.Flags().String("name", "", "display name")
	userCreateCmd.Flags().Bool("password-stdin", false, "read the password from stdin")
}

func readPassword(fromStdin bool, stdin io.Reader) (string, error) {
	var password string
	if fromStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		password = strings.TrimRight(line, "\r\n")
	} else {
		password = os.Getenv("DBHUB_USER_PASSWORD")
	}
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	return password, nil
}

func createUser(ctx context.Context, u store.NewUser) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errMissingDatabaseURL
	}

	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return err
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	_, err = gormstore.NewUsersStore(database, cfg.BcryptCost).CreateUser(ctx, u)
	return err
}
