// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import "context"

// Repository is the persistence capability for categories.
type Repository interface {
	ListCategories(context context.Context, filter Filter, limit, offset int) ([]*Category, int, error)
	GetCategory(context context.Context, id int) (*Category, error)
	CreateCategory(context context.Context, category *Category) error
	UpdateCategory(context context.Context, category *Category) error
	CountBooks(context context.Context, id int) (int, error)
	DeleteCategory(context context.Context, id int) error
}
