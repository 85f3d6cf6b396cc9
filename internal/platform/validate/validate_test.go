// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Dune", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_ISBN checks ISBN-10 and ISBN-13 shapes.
*/
func TestValidator_ISBN(t *testing.T) {
	tests := []struct {
		name    string
		isbn    string
		isValid bool
	}{
		{"isbn13_hyphenated", "978-0-441-17271-9", true},
		{"isbn13_plain", "9780441172719", true},
		{"isbn10_with_x", "0-8044-2957-x", true},
		{"empty_is_left_to_required", "", true},
		{"too_short", "12345", false},
		{"letters", "97804411727AB", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.ISBN("isbn", tt.isbn)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}

	assert.Equal(t, "080442957X", validate.NormalizeISBN(" 0-8044-2957-x "))
}

/*
TestValidator_Chain collects every failure in one error.
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}
	v.Required("title", "").
		RequiredID("author_id", 0).
		Range("total_copies", 0, 1, 10000).
		OneOf("role", "librarian", "admin", "member").
		Username("username", "bad name!").
		MaxLen("publisher", "abcdef", 3).
		MinLen("password", "abc", 8).
		Custom("published_year", true, "Must not be in the future")

	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 8)
}

/*
TestValidator_Chain_Success returns nil when every rule passes.
*/
func TestValidator_Chain_Success(t *testing.T) {
	v := &validate.Validator{}
	v.Required("title", "Dune").
		RequiredID("author_id", 3).
		Range("total_copies", 2, 1, 10000).
		OneOf("role", "member", "admin", "member").
		Username("username", "alice.b").
		ISBN("isbn", "9780441172719")

	assert.NoError(t, v.Err())
}
