// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import "context"

// Repository is the persistence capability for authors.
type Repository interface {
	ListAuthors(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error)
	GetAuthor(context context.Context, id int) (*Author, error)
	CreateAuthor(context context.Context, author *Author) error
	UpdateAuthor(context context.Context, author *Author) error

	// CountBooks returns how many books reference the author.
	CountBooks(context context.Context, id int) (int, error)
	DeleteAuthor(context context.Context, id int) error
}
