// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddWhereClause(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		contains []string
		args     int
	}{
		{
			name:     "no filter",
			filter:   Filter{},
			contains: []string{`FROM "catalog"."book" AS "b"`},
			args:     0,
		},
		{
			name:     "title or author search with category",
			filter:   Filter{Query: "dune", CategoryID: 7},
			contains: []string{`"b"."title" ILIKE`, `"a"."name" ILIKE`, `"b"."categoryid" =`},
			args:     3,
		},
		{
			name:     "available only",
			filter:   Filter{AvailableOnly: true, AuthorID: 2},
			contains: []string{`"b"."authorid" =`, `"b"."availablecopies" >`},
			args:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := addWhereClause(tt.filter, baseSelect()).Select(selectColumns()...).Prepared(true).ToSQL()
			require.NoError(t, err)

			for _, fragment := range tt.contains {
				assert.Contains(t, query, fragment)
			}
			assert.Len(t, args, tt.args)
		})
	}
}
