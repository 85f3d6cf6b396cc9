// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account identity and session management.

It defines the User and Session entities and the flows around them:
self-registration of members, username/password login, refresh-token
rotation, logout and operator provisioning of librarian accounts.

# Architecture

  - Service: Orchestrates Register, Login, RefreshSession, Logout, Provision.
  - Repository: Postgres for accounts, Redis for refresh sessions.
  - Security: bcrypt password hashes and RS256-signed access tokens.
*/
package auth

import (
	"time"

	"github.com/taibuivan/libris/internal/platform/sec"
)

// # Domain Entities

// User is a library account. Admins are librarians; members borrow books.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"` // Never serialized.
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Session is an active refresh-token session. It is addressed by the hash of
// the token so the raw value is never stored.
type Session struct {
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldUsername    = "username"
	FieldPassword    = "password"
	FieldRole        = "role"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
)

// # Credential Rules

const (
	UsernameMinLength = 3
	UsernameMaxLength = 64
	PasswordMinLength = 8

	// bcrypt ignores input past 72 bytes.
	PasswordMaxLength = 72
)
