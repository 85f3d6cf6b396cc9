// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/database/schema"
	"github.com/taibuivan/libris/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on catalog.category.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var selectCategory = fmt.Sprintf(`
	SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
	       (SELECT count(*) FROM %s b WHERE b.%s = c.%s)
	FROM %s c
`,
	schema.CatalogCategory.ID, schema.CatalogCategory.Name, schema.CatalogCategory.Slug,
	schema.CatalogCategory.Description, schema.CatalogCategory.CreatedAt, schema.CatalogCategory.UpdatedAt,
	schema.CatalogBook.Table, schema.CatalogBook.CategoryID, schema.CatalogCategory.ID,
	schema.CatalogCategory.Table,
)

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (*Category, error) {
	category := &Category{}
	err := row.Scan(
		&category.ID, &category.Name, &category.Slug, &category.Description,
		&category.CreatedAt, &category.UpdatedAt, &category.BookCount,
	)
	return category, err
}

func (repository *PostgresRepository) ListCategories(context context.Context, filter Filter, limit, offset int) ([]*Category, int, error) {
	where := "WHERE TRUE"
	args := []any{}

	if filter.Query != "" {
		where += fmt.Sprintf(" AND c.%s ILIKE $1", schema.CatalogCategory.Name)
		args = append(args, "%"+filter.Query+"%")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s c %s`, schema.CatalogCategory.Table, where)
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_categories")
	}

	query := fmt.Sprintf(`%s %s ORDER BY c.%s ASC, c.%s ASC LIMIT $%d OFFSET $%d`,
		selectCategory, where, schema.CatalogCategory.Name, schema.CatalogCategory.ID, len(args)+1, len(args)+2)

	rows, err := repository.db.Query(context, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_categories")
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_category")
		}
		categories = append(categories, category)
	}

	return categories, total, dberr.Wrap(rows.Err(), "iterate_categories")
}

func (repository *PostgresRepository) GetCategory(context context.Context, id int) (*Category, error) {
	query := fmt.Sprintf(`%s WHERE c.%s = $1`, selectCategory, schema.CatalogCategory.ID)

	category, err := scanCategory(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "Category", "get_category")
	}
	return category, nil
}

func (repository *PostgresRepository) CreateCategory(context context.Context, category *Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		schema.CatalogCategory.Table, schema.CatalogCategory.Name, schema.CatalogCategory.Slug,
		schema.CatalogCategory.Description, schema.CatalogCategory.CreatedAt, schema.CatalogCategory.UpdatedAt,
		schema.CatalogCategory.ID, schema.CatalogCategory.CreatedAt, schema.CatalogCategory.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, category.Name, category.Slug, category.Description).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	return wrapSlugConflict(err, "create_category")
}

func (repository *PostgresRepository) UpdateCategory(context context.Context, category *Category) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogCategory.Table, schema.CatalogCategory.Name, schema.CatalogCategory.Slug,
		schema.CatalogCategory.Description, schema.CatalogCategory.UpdatedAt,
		schema.CatalogCategory.ID, schema.CatalogCategory.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, category.ID, category.Name, category.Slug, category.Description).
		Scan(&category.UpdatedAt)
	if err != nil && !dberr.IsUniqueViolation(err) {
		return dberr.WrapNotFound(err, "Category", "update_category")
	}
	return wrapSlugConflict(err, "update_category")
}

func (repository *PostgresRepository) CountBooks(context context.Context, id int) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, schema.CatalogBook.Table, schema.CatalogBook.CategoryID)

	var count int
	err := repository.db.QueryRow(context, query, id).Scan(&count)
	return count, dberr.Wrap(err, "count_category_books")
}

func (repository *PostgresRepository) DeleteCategory(context context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogCategory.Table, schema.CatalogCategory.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.Conflict("Category is referenced by a book").WithCause(err)
		}
		return dberr.Wrap(err, "delete_category")
	}

	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Category")
	}
	return nil
}

func wrapSlugConflict(err error, action string) error {
	if dberr.IsUniqueViolation(err) {
		return apperr.Conflict("A category with this name already exists").WithCause(err)
	}
	return dberr.Wrap(err, action)
}
