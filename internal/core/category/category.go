// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package category manages the shelves (genres) books are filed under.
package category

import "time"

// Category groups books by subject. Slug is derived from Name.
type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	BookCount   int       `json:"book_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateInput carries a partial update. Nil fields keep their stored value.
type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Filter holds the parameters for a paginated category search.
type Filter struct {
	Query string
}

const (
	FieldName        = "name"
	FieldDescription = "description"
)

const (
	maxNameLength        = 255
	maxDescriptionLength = 5000
)
