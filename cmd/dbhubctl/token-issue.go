package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbhub/pkg/identity"
	"github.com/doodlesbykumbi/dbhub/pkg/token"
)

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <email>",
	Short: "Issue a session token signed with the configured secret",
	Long: `Issue a session token signed with the configured secret.

The account is not looked up. The token is accepted by any server sharing
DBHUB_TOKEN_SECRET.

Example:
  dbhubctl token issue alice@example.com
  dbhubctl token issue admin@example.com --role admin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roleName, _ := cmd.Flags().GetString("role")

		raw, err := issueToken(args[0], roleName)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), raw)
		return err
	},
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenIssueCmd.Flags().String("role", string(identity.RoleUser), "system role (admin, user, guest)")
}

func issueToken(email, roleName string) (string, error) {
	role, err := identity.ParseRole(roleName)
	if err != nil {
		return "", err
	}

	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	tokens, err := token.New(cfg.Secret())
	if err != nil {
		return "", err
	}
	return tokens.Issue(identity.Claims{Email: email, Role: role})
}
