// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound when absent
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound when absent
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a new account.

		Returns:
		  - error: apperr.Conflict when the username is taken
	*/
	Create(context context.Context, user *User) error

	/*
		UpdateCredentials replaces the password hash and role of an account.

		Returns:
		  - error: apperr.NotFound when absent
	*/
	UpdateCredentials(context context.Context, user *User) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh sessions.
type SessionRepository interface {

	// Create stores a session until its ExpiresAt.
	Create(context context.Context, session *Session) error

	// Consume atomically loads and deletes a live session. Only one caller
	// can consume a given session; the others get apperr.NotFound.
	Consume(context context.Context, tokenHash string) (*Session, error)

	// Revoke deletes the session. Revoking an unknown session is not an error.
	Revoke(context context.Context, tokenHash string) error
}
