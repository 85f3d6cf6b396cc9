// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/libris/internal/core/borrowing"
	"github.com/taibuivan/libris/pkg/clock"
)

var asOf string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark loans past their due date as overdue",
	Long: `Move every borrowed record whose due date is before the given instant
to overdue. Running it again with the same instant changes nothing.

Examples:
  libris sweep
  libris sweep --as-of 2026-05-01T00:00:00Z`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		at, err := parseAsOf(asOf, time.Now())
		if err != nil {
			return err
		}

		logger := newLogger()
		pool, err := openPool(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		service := borrowing.NewService(borrowing.NewPostgresStore(pool), clock.NewFixed(at), 0, logger)
		result, err := service.Sweep(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d record(s) marked overdue as of %s\n", result.Updated, result.AsOf.Format(time.RFC3339))
		return nil
	},
}

// parseAsOf reads an RFC 3339 instant; empty means now.
func parseAsOf(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now.UTC(), nil
	}

	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--as-of must be an RFC 3339 timestamp: %w", err)
	}
	return at.UTC(), nil
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().StringVar(&asOf, "as-of", "", "Sweep as of this RFC 3339 instant (default now)")
}
