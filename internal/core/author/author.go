// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package author manages the writers referenced by catalogue books.
package author

import "time"

// Author represents the writer of one or more books.
type Author struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	BookCount int       `json:"book_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateInput carries a partial update. Nil fields keep their stored value.
type UpdateInput struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

// Filter holds the parameters for a paginated author search.
type Filter struct {
	Query string // Case-insensitive substring of the name
}

// Global field names for validation
const (
	FieldName = "name"
	FieldBio  = "bio"
)

const (
	maxNameLength = 255
	maxBioLength  = 5000
)
