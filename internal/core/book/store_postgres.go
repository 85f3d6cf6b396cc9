// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/database/schema"
	"github.com/taibuivan/libris/internal/platform/dberr"
)

const dialectPostgres = "postgres"

// PostgresRepository implements [Repository] on catalog.book.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Query Building

var (
	tableBook     = goqu.S("catalog").Table("book").As("b")
	tableAuthor   = goqu.S("catalog").Table("author").As("a")
	tableCategory = goqu.S("catalog").Table("category").As("c")
)

func bookCol(column string) exp.IdentifierExpression {
	return goqu.T("b").Col(column)
}

// baseSelect joins a book with its author and category names.
func baseSelect() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(tableBook).
		Join(tableAuthor, goqu.On(goqu.T("a").Col(schema.CatalogAuthor.ID).Eq(bookCol(schema.CatalogBook.AuthorID)))).
		Join(tableCategory, goqu.On(goqu.T("c").Col(schema.CatalogCategory.ID).Eq(bookCol(schema.CatalogBook.CategoryID))))
}

func selectColumns() []any {
	return []any{
		bookCol(schema.CatalogBook.ID),
		bookCol(schema.CatalogBook.Title),
		bookCol(schema.CatalogBook.ISBN),
		bookCol(schema.CatalogBook.AuthorID),
		goqu.T("a").Col(schema.CatalogAuthor.Name),
		bookCol(schema.CatalogBook.CategoryID),
		goqu.T("c").Col(schema.CatalogCategory.Name),
		bookCol(schema.CatalogBook.Publisher),
		bookCol(schema.CatalogBook.PublishedYear),
		bookCol(schema.CatalogBook.Description),
		bookCol(schema.CatalogBook.CoverImage),
		bookCol(schema.CatalogBook.TotalCopies),
		bookCol(schema.CatalogBook.AvailableCopies),
		bookCol(schema.CatalogBook.CreatedAt),
		bookCol(schema.CatalogBook.UpdatedAt),
	}
}

// addWhereClause appends one predicate per populated filter field.
func addWhereClause(filter Filter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	expressions := make([]goqu.Expression, 0, 4)

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		expressions = append(expressions, goqu.Or(
			bookCol(schema.CatalogBook.Title).ILike(pattern),
			goqu.T("a").Col(schema.CatalogAuthor.Name).ILike(pattern),
		))
	}

	if filter.CategoryID > 0 {
		expressions = append(expressions, bookCol(schema.CatalogBook.CategoryID).Eq(filter.CategoryID))
	}

	if filter.AuthorID > 0 {
		expressions = append(expressions, bookCol(schema.CatalogBook.AuthorID).Eq(filter.AuthorID))
	}

	if filter.AvailableOnly {
		expressions = append(expressions, bookCol(schema.CatalogBook.AvailableCopies).Gt(0))
	}

	if len(expressions) == 0 {
		return selectStmt
	}
	return selectStmt.Where(goqu.And(expressions...))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*Book, error) {
	book := &Book{}
	err := row.Scan(
		&book.ID, &book.Title, &book.ISBN,
		&book.AuthorID, &book.AuthorName,
		&book.CategoryID, &book.CategoryName,
		&book.Publisher, &book.PublishedYear, &book.Description, &book.CoverImage,
		&book.TotalCopies, &book.AvailableCopies,
		&book.CreatedAt, &book.UpdatedAt,
	)
	return book, err
}

// # Queries

func (repository *PostgresRepository) ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	filtered := addWhereClause(filter, baseSelect())

	countSQL, countArgs, err := filtered.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Errorf("build count_books: %w", err))
	}

	var total int
	if err := repository.db.QueryRow(context, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_books")
	}

	listSQL, listArgs, err := filtered.
		Select(selectColumns()...).
		Order(bookCol(schema.CatalogBook.Title).Asc(), bookCol(schema.CatalogBook.ID).Asc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Errorf("build list_books: %w", err))
	}

	rows, err := repository.db.Query(context, listSQL, listArgs...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_book")
		}
		books = append(books, book)
	}

	return books, total, dberr.Wrap(rows.Err(), "iterate_books")
}

func (repository *PostgresRepository) GetBook(context context.Context, id int) (*Book, error) {
	query, args, err := baseSelect().
		Select(selectColumns()...).
		Where(bookCol(schema.CatalogBook.ID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("build get_book: %w", err))
	}

	book, err := scanBook(repository.db.QueryRow(context, query, args...))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "Book", "get_book")
	}
	return book, nil
}

func (repository *PostgresRepository) ISBNExists(context context.Context, isbn string, excludeID int) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s <> $2)`,
		schema.CatalogBook.Table, schema.CatalogBook.ISBN, schema.CatalogBook.ID)

	var exists bool
	err := repository.db.QueryRow(context, query, isbn, excludeID).Scan(&exists)
	return exists, dberr.Wrap(err, "check_isbn")
}

func (repository *PostgresRepository) ReferencesExist(context context.Context, authorID, categoryID int) (bool, bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1),
		       EXISTS (SELECT 1 FROM %s WHERE %s = $2)
	`,
		schema.CatalogAuthor.Table, schema.CatalogAuthor.ID,
		schema.CatalogCategory.Table, schema.CatalogCategory.ID,
	)

	var authorExists, categoryExists bool
	err := repository.db.QueryRow(context, query, authorID, categoryID).Scan(&authorExists, &categoryExists)
	return authorExists, categoryExists, dberr.Wrap(err, "check_book_references")
}

// # Commands

func (repository *PostgresRepository) CreateBook(context context.Context, book *Book) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, NOW(), NOW())
		RETURNING %s, %s, %s, %s
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.Title, schema.CatalogBook.ISBN, schema.CatalogBook.AuthorID, schema.CatalogBook.CategoryID,
		schema.CatalogBook.Publisher, schema.CatalogBook.PublishedYear, schema.CatalogBook.Description,
		schema.CatalogBook.CoverImage, schema.CatalogBook.TotalCopies, schema.CatalogBook.AvailableCopies,
		schema.CatalogBook.CreatedAt, schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.ID, schema.CatalogBook.AvailableCopies, schema.CatalogBook.CreatedAt, schema.CatalogBook.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		book.Title, book.ISBN, book.AuthorID, book.CategoryID,
		book.Publisher, book.PublishedYear, book.Description, book.CoverImage, book.TotalCopies,
	).Scan(&book.ID, &book.AvailableCopies, &book.CreatedAt, &book.UpdatedAt)

	return wrapWriteError(err, "create_book")
}

func (repository *PostgresRepository) UpdateBook(context context.Context, book *Book) error {
	// SET expressions read the pre-update row, so the delta is computed
	// against the stored total under the row lock.
	query := fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = $2, %[3]s = $3, %[4]s = $4, %[5]s = $5, %[6]s = $6, %[7]s = $7,
		    %[8]s = $8, %[9]s = $9,
		    %[11]s = %[11]s + ($10 - %[10]s),
		    %[10]s = $10,
		    %[12]s = NOW()
		WHERE %[13]s = $1 AND %[11]s + ($10 - %[10]s) >= 0
		RETURNING %[11]s, %[12]s
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.Title, schema.CatalogBook.ISBN, schema.CatalogBook.AuthorID, schema.CatalogBook.CategoryID,
		schema.CatalogBook.Publisher, schema.CatalogBook.PublishedYear, schema.CatalogBook.Description,
		schema.CatalogBook.CoverImage,
		schema.CatalogBook.TotalCopies, schema.CatalogBook.AvailableCopies, schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.ID,
	)

	err := repository.db.QueryRow(context, query,
		book.ID, book.Title, book.ISBN, book.AuthorID, book.CategoryID,
		book.Publisher, book.PublishedYear, book.Description, book.CoverImage, book.TotalCopies,
	).Scan(&book.AvailableCopies, &book.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// Either the row vanished or a borrow landed since the service read it.
		if _, getErr := repository.GetBook(context, book.ID); getErr != nil {
			return getErr
		}
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldTotalCopies,
			Message: "Cannot be lower than the copies currently on loan",
		})
	}

	return wrapWriteError(err, "update_book")
}

func (repository *PostgresRepository) CountLoans(context context.Context, id int) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, schema.LendingBorrowing.Table, schema.LendingBorrowing.BookID)

	var count int
	err := repository.db.QueryRow(context, query, id).Scan(&count)
	return count, dberr.Wrap(err, "count_book_loans")
}

func (repository *PostgresRepository) DeleteBook(context context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogBook.Table, schema.CatalogBook.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.Conflict("Book has borrowing records").WithCause(err)
		}
		return dberr.Wrap(err, "delete_book")
	}

	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Book")
	}
	return nil
}

// wrapWriteError maps the constraint names of catalog.book to domain errors.
func wrapWriteError(err error, action string) error {
	if err == nil {
		return nil
	}

	if dberr.IsUniqueViolation(err) && dberr.Constraint(err) == schema.CatalogBook.ISBNKey {
		return apperr.DuplicateISBN().WithCause(err)
	}

	if dberr.IsForeignKeyViolation(err) {
		return apperr.ValidationError("Author or category does not exist").WithCause(err)
	}

	return dberr.Wrap(err, action)
}
