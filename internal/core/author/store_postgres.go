// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/database/schema"
	"github.com/taibuivan/libris/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on catalog.author.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// selectAuthor projects an author with its live book count.
var selectAuthor = fmt.Sprintf(`
	SELECT a.%s, a.%s, a.%s, a.%s, a.%s,
	       (SELECT count(*) FROM %s b WHERE b.%s = a.%s)
	FROM %s a
`,
	schema.CatalogAuthor.ID, schema.CatalogAuthor.Name, schema.CatalogAuthor.Bio,
	schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
	schema.CatalogBook.Table, schema.CatalogBook.AuthorID, schema.CatalogAuthor.ID,
	schema.CatalogAuthor.Table,
)

func (repository *PostgresRepository) ListAuthors(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	where := "WHERE TRUE"
	args := []any{}

	if filter.Query != "" {
		where += fmt.Sprintf(" AND a.%s ILIKE $1", schema.CatalogAuthor.Name)
		args = append(args, "%"+filter.Query+"%")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s a %s`, schema.CatalogAuthor.Table, where)
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_authors")
	}

	query := fmt.Sprintf(`%s %s ORDER BY a.%s ASC, a.%s ASC LIMIT $%d OFFSET $%d`,
		selectAuthor, where, schema.CatalogAuthor.Name, schema.CatalogAuthor.ID, len(args)+1, len(args)+2)

	rows, err := repository.db.Query(context, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_authors")
	}
	defer rows.Close()

	authors := []*Author{}
	for rows.Next() {
		author := &Author{}
		if err := rows.Scan(&author.ID, &author.Name, &author.Bio, &author.CreatedAt, &author.UpdatedAt, &author.BookCount); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_author")
		}
		authors = append(authors, author)
	}

	return authors, total, dberr.Wrap(rows.Err(), "iterate_authors")
}

func (repository *PostgresRepository) GetAuthor(context context.Context, id int) (*Author, error) {
	query := fmt.Sprintf(`%s WHERE a.%s = $1`, selectAuthor, schema.CatalogAuthor.ID)

	author := &Author{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&author.ID, &author.Name, &author.Bio, &author.CreatedAt, &author.UpdatedAt, &author.BookCount,
	)
	if err != nil {
		return nil, dberr.WrapNotFound(err, "Author", "get_author")
	}
	return author, nil
}

func (repository *PostgresRepository) CreateAuthor(context context.Context, author *Author) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		schema.CatalogAuthor.Table, schema.CatalogAuthor.Name, schema.CatalogAuthor.Bio,
		schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
		schema.CatalogAuthor.ID, schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, author.Name, author.Bio).Scan(&author.ID, &author.CreatedAt, &author.UpdatedAt)
	return dberr.Wrap(err, "create_author")
}

func (repository *PostgresRepository) UpdateAuthor(context context.Context, author *Author) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogAuthor.Table, schema.CatalogAuthor.Name, schema.CatalogAuthor.Bio,
		schema.CatalogAuthor.UpdatedAt, schema.CatalogAuthor.ID, schema.CatalogAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, author.ID, author.Name, author.Bio).Scan(&author.UpdatedAt)
	return dberr.WrapNotFound(err, "Author", "update_author")
}

func (repository *PostgresRepository) CountBooks(context context.Context, id int) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, schema.CatalogBook.Table, schema.CatalogBook.AuthorID)

	var count int
	err := repository.db.QueryRow(context, query, id).Scan(&count)
	return count, dberr.Wrap(err, "count_author_books")
}

func (repository *PostgresRepository) DeleteAuthor(context context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogAuthor.Table, schema.CatalogAuthor.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		// A book inserted after the service's count check.
		if dberr.IsForeignKeyViolation(err) {
			return apperr.Conflict("Author is referenced by a book").WithCause(err)
		}
		return dberr.Wrap(err, "delete_author")
	}

	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Author")
	}
	return nil
}
