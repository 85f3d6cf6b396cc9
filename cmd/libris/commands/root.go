// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package commands holds the cobra command tree of the libris CLI.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/taibuivan/libris/internal/platform/config"
	"github.com/taibuivan/libris/internal/platform/constants"
	"github.com/taibuivan/libris/internal/platform/postgres"
)

var (
	// Global flags
	dbURL   string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "libris",
	Short: "Libris operator tools",
	Long: `Operator commands for the Libris lending service.

The database connection is read from DATABASE_URL unless --db is given.

Commands:
  migrate up|status  - Apply or inspect schema migrations
  user create        - Create or reset an account (e.g. the first librarian)
  sweep              - Mark loans past their due date as overdue`,
	Version:       constants.AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// newLogger writes JSON logs to stderr so command output on stdout stays clean.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", "libris-cli"))
}

// databaseConfig resolves the connection settings from the environment and
// the --db flag.
func databaseConfig() (config.DatabaseConfig, error) {
	if dbURL != "" {
		return config.DatabaseConfig{URL: dbURL, MaxConns: 4, MinConns: 1}, nil
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("set DATABASE_URL or pass --db: %w", err)
	}
	return *cfg, nil
}

func openPool(ctx context.Context, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := databaseConfig()
	if err != nil {
		return nil, err
	}
	return postgres.NewPool(ctx, cfg, logger)
}
