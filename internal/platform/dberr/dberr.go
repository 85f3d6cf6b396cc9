// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/libris/internal/platform/apperr"
)

// Wrap inspects a database error and converts it into an [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The action names the failed operation ("find book") and is kept in the
// wrapped cause for the server log.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Already classified further down the stack
	if apperr.As(err) != nil {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Resource")
	}

	switch Code(err) {
	case pgerrcode.UniqueViolation:
		return apperr.Conflict("Resource already exists").WithCause(fmt.Errorf("%s: %w", action, err))
	case pgerrcode.ForeignKeyViolation:
		return apperr.Conflict("Resource is still referenced").WithCause(fmt.Errorf("%s: %w", action, err))
	case pgerrcode.CheckViolation:
		return apperr.ValidationError("Value violates a data constraint").WithCause(fmt.Errorf("%s: %w", action, err))
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// WrapNotFound behaves like [Wrap] but names the missing resource, so a
// missing row surfaces as "Book not found" rather than "Resource not found".
func WrapNotFound(err error, resource, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}
	return Wrap(err, action)
}

// Code returns the SQLSTATE of a PostgreSQL error, or "" for other errors.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// Constraint returns the violated constraint name, or "" when unknown.
func Constraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// IsUniqueViolation reports whether err is a 23505 error.
func IsUniqueViolation(err error) bool {
	return Code(err) == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation reports whether err is a 23503 error.
func IsForeignKeyViolation(err error) bool {
	return Code(err) == pgerrcode.ForeignKeyViolation
}
