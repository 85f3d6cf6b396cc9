// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// Repository is the persistence capability for books.
type Repository interface {
	ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error)
	GetBook(context context.Context, id int) (*Book, error)

	// ISBNExists reports whether another book (id != excludeID) uses isbn.
	ISBNExists(context context.Context, isbn string, excludeID int) (bool, error)

	// ReferencesExist reports whether the author and category rows exist.
	ReferencesExist(context context.Context, authorID, categoryID int) (authorExists, categoryExists bool, err error)

	CreateBook(context context.Context, book *Book) error

	// UpdateBook writes the editable fields and applies the copy delta
	// (book.TotalCopies minus the stored total) to the available count in one
	// statement. It fails with ValidationError if that would go negative.
	UpdateBook(context context.Context, book *Book) error

	// CountLoans returns the number of ledger entries, returned or not, for the book.
	CountLoans(context context.Context, id int) (int, error)
	DeleteBook(context context.Context, id int) error
}
