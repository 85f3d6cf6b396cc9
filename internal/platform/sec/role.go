// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Librarian: manages the catalog and sees every borrowing.
	RoleAdmin UserRole = "admin"

	// Patron: browses the catalog and borrows books.
	RoleMember UserRole = "member"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}

// # Caller Identity

// Actor is the authenticated caller of a service operation.
//
// Services receive it as an explicit parameter instead of reading ambient
// session state, so every operation states on whose behalf it runs.
type Actor struct {
	UserID string
	Role   UserRole
}

// IsAdmin reports whether the actor may act on other users' records.
func (a Actor) IsAdmin() bool {
	return a.Role.AtLeast(RoleAdmin)
}

// CanAccess reports whether the actor may read or mutate a record owned by ownerID.
func (a Actor) CanAccess(ownerID string) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
