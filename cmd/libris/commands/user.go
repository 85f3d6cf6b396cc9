// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/libris/internal/platform/sec"
	"github.com/taibuivan/libris/internal/users/auth"
)

var (
	// User flags
	username string
	password string
	role     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account, or reset the password and role of an existing one",
	Long: `Create an account with the given role. When the username already exists
its password and role are replaced.

The password may also be supplied through LIBRIS_PASSWORD to keep it out of
the shell history.

Examples:
  libris user create --username librarian --role admin --password 's3cret-pass'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if password == "" {
			password = os.Getenv("LIBRIS_PASSWORD")
		}

		logger := newLogger()
		pool, err := openPool(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		service := auth.NewService(auth.NewUserRepository(pool), nil, nil, logger)
		user, created, err := service.Provision(cmd.Context(), auth.Credentials{
			Username: username,
			Password: password,
		}, sec.UserRole(role))
		if err != nil {
			return err
		}

		action := "updated"
		if created {
			action = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s account %s (%s)\n", action, user.Role, user.Username, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().StringVar(&username, "username", "", "Account username")
	userCreateCmd.Flags().StringVar(&password, "password", "", "Account password (or LIBRIS_PASSWORD)")
	userCreateCmd.Flags().StringVar(&role, "role", string(sec.RoleMember), "Account role: admin or member")
	_ = userCreateCmd.MarkFlagRequired("username")
}
