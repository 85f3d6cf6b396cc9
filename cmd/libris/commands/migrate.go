// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/libris/internal/platform/migration"
	"github.com/taibuivan/libris/migrations"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Apply or inspect the embedded schema migrations.

Subcommands:
  up      - Apply pending migrations
  status  - Show the current schema version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := databaseConfig()
		if err != nil {
			return err
		}

		if err := migration.RunUp(cfg.URL, migrations.FS, newLogger()); err != nil {
			return err
		}

		status, err := migration.CurrentStatus(cfg.URL, migrations.FS, newLogger())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", status.Version)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := databaseConfig()
		if err != nil {
			return err
		}

		status, err := migration.CurrentStatus(cfg.URL, migrations.FS, newLogger())
		if err != nil {
			return err
		}

		state := "clean"
		if status.Dirty {
			state = "dirty"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d (%s)\n", status.Version, state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
}
