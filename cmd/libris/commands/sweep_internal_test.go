// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAsOf(t *testing.T) {
	now := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)

	at, err := parseAsOf("", now)
	require.NoError(t, err)
	assert.Equal(t, now, at)

	at, err = parseAsOf("2026-04-01T09:00:00+02:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.April, 1, 7, 0, 0, 0, time.UTC), at)

	_, err = parseAsOf("yesterday", now)
	assert.Error(t, err)
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{{"migrate", "up"}, {"migrate", "status"}, {"user", "create"}, {"sweep"}} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
