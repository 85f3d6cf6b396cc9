// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package book manages catalogue titles and their copy counts.
//
// # Inventory
//
// AvailableCopies is moved by the lending engine on borrow and return. This
// package only sets it on creation (equal to TotalCopies) and shifts it by the
// same delta when a librarian restocks or withdraws copies, so the number of
// copies on loan (TotalCopies - AvailableCopies) is preserved.
package book

import "time"

// Book is a catalogue title with its physical copy counts.
type Book struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	ISBN            string    `json:"isbn"`
	AuthorID        int       `json:"author_id"`
	AuthorName      string    `json:"author_name,omitempty"`
	CategoryID      int       `json:"category_id"`
	CategoryName    string    `json:"category_name,omitempty"`
	Publisher       string    `json:"publisher"`
	PublishedYear   *int      `json:"published_year"`
	Description     string    `json:"description"`
	CoverImage      string    `json:"cover_image"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OnLoan returns the number of copies currently lent out.
func (b *Book) OnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

// CreateInput is the payload for a new title.
type CreateInput struct {
	Title         string `json:"title"`
	ISBN          string `json:"isbn"`
	AuthorID      int    `json:"author_id"`
	CategoryID    int    `json:"category_id"`
	Publisher     string `json:"publisher"`
	PublishedYear *int   `json:"published_year"`
	Description   string `json:"description"`
	CoverImage    string `json:"cover_image"`
	TotalCopies   int    `json:"total_copies"`
}

// UpdateInput carries a partial update. Nil fields keep their stored value.
// AvailableCopies is deliberately absent.
type UpdateInput struct {
	Title         *string `json:"title"`
	ISBN          *string `json:"isbn"`
	AuthorID      *int    `json:"author_id"`
	CategoryID    *int    `json:"category_id"`
	Publisher     *string `json:"publisher"`
	PublishedYear *int    `json:"published_year"`
	Description   *string `json:"description"`
	CoverImage    *string `json:"cover_image"`
	TotalCopies   *int    `json:"total_copies"`
}

// Filter holds the parameters for a paginated catalogue search.
type Filter struct {
	Query         string // Matches title or author name, case-insensitive
	CategoryID    int
	AuthorID      int
	AvailableOnly bool
}

// Global field names for validation
const (
	FieldTitle         = "title"
	FieldISBN          = "isbn"
	FieldAuthorID      = "author_id"
	FieldCategoryID    = "category_id"
	FieldPublisher     = "publisher"
	FieldPublishedYear = "published_year"
	FieldDescription   = "description"
	FieldCoverImage    = "cover_image"
	FieldTotalCopies   = "total_copies"
)

const (
	maxTitleLength       = 500
	maxPublisherLength   = 255
	maxDescriptionLength = 10000
	maxCoverImageLength  = 2048
	maxTotalCopies       = 10000
	minPublishedYear     = 1000
)
