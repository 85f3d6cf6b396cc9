// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error taxonomy for Libris.

Every failure that leaves a service is an [AppError] carrying a machine-readable
code, a client-safe message and the HTTP status the transport layer should use.

Architecture:

  - AppError: code + message + status, with the storage cause kept for logs only.
  - Lending codes: OUT_OF_STOCK, ALREADY_BORROWED, ALREADY_RETURNED.
  - Catalog codes: CONFLICT (referential deletion), DUPLICATE_ISBN.

Callers branch on [AppError.Code] via [HasCode]; they never compare messages.
*/
package apperr

import (
	"context"
	"errors"
	"net/http"
)

// # Error Codes

const (
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeValidation      = "VALIDATION_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
	CodeOutOfStock      = "OUT_OF_STOCK"
	CodeAlreadyBorrowed = "ALREADY_BORROWED"
	CodeAlreadyReturned = "ALREADY_RETURNED"
	CodeDuplicateISBN   = "DUPLICATE_ISBN"
	CodeCanceled        = "REQUEST_CANCELED"
	CodeTimeout         = "REQUEST_TIMEOUT"
)

// AppError is the canonical error type for the Libris API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "OUT_OF_STOCK").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause returns a copy of e that records cause for server-side logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Book") // Returns "Book not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError], used when a deletion is blocked by
// referencing rows or a unique constraint is hit.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited() *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    "Rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Lending Errors

// OutOfStock reports that no copy of the book was available at decision time.
func OutOfStock() *AppError {
	return &AppError{
		Code:       CodeOutOfStock,
		Message:    "No copies of this book are currently available",
		HTTPStatus: http.StatusConflict,
	}
}

// AlreadyBorrowed reports that the user already holds an unreturned copy of the book.
func AlreadyBorrowed() *AppError {
	return &AppError{
		Code:       CodeAlreadyBorrowed,
		Message:    "You have already borrowed this book",
		HTTPStatus: http.StatusConflict,
	}
}

// AlreadyReturned reports that the borrow record has already been closed.
func AlreadyReturned() *AppError {
	return &AppError{
		Code:       CodeAlreadyReturned,
		Message:    "This book has already been returned",
		HTTPStatus: http.StatusConflict,
	}
}

// # Catalog Errors

// DuplicateISBN reports that another book already uses the ISBN.
func DuplicateISBN() *AppError {
	return &AppError{
		Code:       CodeDuplicateISBN,
		Message:    "A book with this ISBN already exists",
		HTTPStatus: http.StatusConflict,
		Details:    []FieldError{{Field: "isbn", Message: "Must be unique"}},
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Canceled reports that the caller went away before the work finished.
func Canceled(cause error) *AppError {
	return &AppError{
		Code:       CodeCanceled,
		Message:    "The request was cancelled",
		HTTPStatus: http.StatusRequestTimeout,
		Cause:      cause,
	}
}

// Timeout reports that the request deadline passed before the work finished.
func Timeout(cause error) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    "The request timed out",
		HTTPStatus: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// # Helpers

// FromContext converts a context cancellation or deadline in err's chain into
// [Canceled] or [Timeout]. Any other error, including an existing
// [*AppError], is returned unchanged.
func FromContext(err error) error {
	if err == nil || As(err) != nil {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout(err)
	case errors.Is(err, context.Canceled):
		return Canceled(err)
	}
	return err
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
