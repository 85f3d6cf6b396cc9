// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/platform/apperr"
)

/*
TestConstructors_StatusAndCode checks the status/code pairing of every lending
and catalog error.
*/
func TestConstructors_StatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		code   string
		status int
	}{
		{"not_found", apperr.NotFound("Book"), apperr.CodeNotFound, http.StatusNotFound},
		{"out_of_stock", apperr.OutOfStock(), apperr.CodeOutOfStock, http.StatusConflict},
		{"already_borrowed", apperr.AlreadyBorrowed(), apperr.CodeAlreadyBorrowed, http.StatusConflict},
		{"already_returned", apperr.AlreadyReturned(), apperr.CodeAlreadyReturned, http.StatusConflict},
		{"duplicate_isbn", apperr.DuplicateISBN(), apperr.CodeDuplicateISBN, http.StatusConflict},
		{"conflict", apperr.Conflict("in use"), apperr.CodeConflict, http.StatusConflict},
		{"validation", apperr.ValidationError("bad"), apperr.CodeValidation, http.StatusBadRequest},
		{"internal", apperr.Internal(errors.New("boom")), apperr.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

/*
TestHasCode_WrappedChain verifies codes survive fmt.Errorf wrapping.
*/
func TestHasCode_WrappedChain(t *testing.T) {
	err := fmt.Errorf("borrow: %w", apperr.OutOfStock())

	assert.True(t, apperr.HasCode(err, apperr.CodeOutOfStock))
	assert.False(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.False(t, apperr.HasCode(errors.New("plain"), apperr.CodeOutOfStock))
}

/*
TestWithCause_DoesNotMutateOriginal ensures causes are attached to a copy.
*/
func TestWithCause_DoesNotMutateOriginal(t *testing.T) {
	base := apperr.Conflict("Author has books")
	cause := errors.New("fk violation")

	wrapped := base.WithCause(cause)

	require.NotSame(t, base, wrapped)
	assert.Nil(t, base.Cause)
	assert.ErrorIs(t, wrapped, cause)
}

/*
TestFromContext types context failures and leaves everything else alone.
*/
func TestFromContext(t *testing.T) {
	canceled := apperr.FromContext(fmt.Errorf("tx: %w", context.Canceled))
	assert.True(t, apperr.HasCode(canceled, apperr.CodeCanceled))
	assert.ErrorIs(t, canceled, context.Canceled)

	timeout := apperr.FromContext(context.DeadlineExceeded)
	assert.True(t, apperr.HasCode(timeout, apperr.CodeTimeout))
	assert.Equal(t, http.StatusGatewayTimeout, apperr.As(timeout).HTTPStatus)

	typed := apperr.OutOfStock()
	assert.Same(t, typed, apperr.FromContext(typed))

	plain := errors.New("plain")
	assert.Equal(t, plain, apperr.FromContext(plain))
	assert.NoError(t, apperr.FromContext(nil))
}
