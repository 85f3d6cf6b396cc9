// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrowing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/database/schema"
	"github.com/taibuivan/libris/internal/platform/dberr"
	"github.com/taibuivan/libris/internal/platform/postgres"
	"github.com/taibuivan/libris/pkg/uuidv7"
)

const dialectPostgres = "postgres"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements [Store] on lending.borrowing and catalog.book.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// WithinTx runs fn inside a single PostgreSQL transaction.
func (store *PostgresStore) WithinTx(context context.Context, fn func(tx Tx) error) error {
	return postgres.InTx(context, store.db, func(tx pgx.Tx) error {
		return fn(&postgresTx{db: tx})
	})
}

// # Query Building

var (
	tableRecord  = goqu.S("lending").Table("borrowing").As("r")
	tableBook    = goqu.S("catalog").Table("book").As("b")
	tableAccount = goqu.S("users").Table("account").As("u")
)

func recordCol(column string) exp.IdentifierExpression {
	return goqu.T("r").Col(column)
}

// baseSelect joins a record with its book title and borrower name.
func baseSelect() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(tableRecord).
		Join(tableBook, goqu.On(goqu.T("b").Col(schema.CatalogBook.ID).Eq(recordCol(schema.LendingBorrowing.BookID)))).
		Join(tableAccount, goqu.On(goqu.T("u").Col(schema.UserAccount.ID).Eq(recordCol(schema.LendingBorrowing.UserID))))
}

func selectColumns() []any {
	return []any{
		recordCol(schema.LendingBorrowing.ID),
		recordCol(schema.LendingBorrowing.UserID),
		goqu.T("u").Col(schema.UserAccount.Username),
		recordCol(schema.LendingBorrowing.BookID),
		goqu.T("b").Col(schema.CatalogBook.Title),
		recordCol(schema.LendingBorrowing.BorrowDate),
		recordCol(schema.LendingBorrowing.DueDate),
		recordCol(schema.LendingBorrowing.ReturnDate),
		recordCol(schema.LendingBorrowing.Status),
	}
}

// addWhereClause appends one predicate per populated filter field.
func addWhereClause(filter Filter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	expressions := make([]goqu.Expression, 0, 4)

	if filter.UserID != "" {
		expressions = append(expressions, recordCol(schema.LendingBorrowing.UserID).Eq(filter.UserID))
	}

	if filter.BookID > 0 {
		expressions = append(expressions, recordCol(schema.LendingBorrowing.BookID).Eq(filter.BookID))
	}

	if filter.Status != "" {
		expressions = append(expressions, recordCol(schema.LendingBorrowing.Status).Eq(string(filter.Status)))
	}

	if filter.ActiveOnly {
		expressions = append(expressions, recordCol(schema.LendingBorrowing.Status).Neq(string(StatusReturned)))
	}

	if len(expressions) == 0 {
		return selectStmt
	}
	return selectStmt.Where(goqu.And(expressions...))
}

func scanRecord(row pgx.Row) (*Record, error) {
	record := &Record{}
	var status string
	err := row.Scan(
		&record.ID, &record.UserID, &record.Username,
		&record.BookID, &record.BookTitle,
		&record.BorrowDate, &record.DueDate, &record.ReturnDate, &status,
	)
	record.Status = Status(status)
	return record, err
}

// findActive is shared by the pool and the transaction.
func findActive(context context.Context, db querier, userID string, bookID int) (*Record, error) {
	if !uuidv7.Valid(userID) {
		return nil, nil
	}

	query, args, err := baseSelect().
		Select(selectColumns()...).
		Where(
			recordCol(schema.LendingBorrowing.UserID).Eq(userID),
			recordCol(schema.LendingBorrowing.BookID).Eq(bookID),
			recordCol(schema.LendingBorrowing.Status).Neq(string(StatusReturned)),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("build find_active_loan: %w", err))
	}

	record, err := scanRecord(db.QueryRow(context, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find_active_loan")
	}
	return record, nil
}

// # Queries

func (store *PostgresStore) SweepOverdue(context context.Context, asOf time.Time) (int, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2 AND %s < $3`,
		schema.LendingBorrowing.Table,
		schema.LendingBorrowing.Status,
		schema.LendingBorrowing.Status,
		schema.LendingBorrowing.DueDate,
	)

	cmd, err := store.db.Exec(context, query, string(StatusOverdue), string(StatusBorrowed), asOf)
	if err != nil {
		return 0, dberr.Wrap(err, "sweep_overdue")
	}
	return int(cmd.RowsAffected()), nil
}

func (store *PostgresStore) FindRecord(context context.Context, id int) (*Record, error) {
	query, args, err := baseSelect().
		Select(selectColumns()...).
		Where(recordCol(schema.LendingBorrowing.ID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("build find_record: %w", err))
	}

	record, err := scanRecord(store.db.QueryRow(context, query, args...))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "Borrowing", "find_record")
	}
	return record, nil
}

func (store *PostgresStore) ListRecords(context context.Context, filter Filter, limit, offset int) ([]*Record, int, error) {
	filtered := addWhereClause(filter, baseSelect())

	countSQL, countArgs, err := filtered.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Errorf("build count_records: %w", err))
	}

	var total int
	if err := store.db.QueryRow(context, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_records")
	}

	listSQL, listArgs, err := filtered.
		Select(selectColumns()...).
		Order(recordCol(schema.LendingBorrowing.BorrowDate).Desc(), recordCol(schema.LendingBorrowing.ID).Desc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Errorf("build list_records: %w", err))
	}

	rows, err := store.db.Query(context, listSQL, listArgs...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_records")
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_record")
		}
		records = append(records, record)
	}

	return records, total, dberr.Wrap(rows.Err(), "iterate_records")
}

func (store *PostgresStore) FindActive(context context.Context, userID string, bookID int) (*Record, error) {
	return findActive(context, store.db, userID, bookID)
}

func (store *PostgresStore) Stats(context context.Context, userID string) (*Stats, error) {
	var owner *string
	if uuidv7.Valid(userID) {
		owner = &userID
	}

	query := fmt.Sprintf(`
		SELECT
			(SELECT count(*) FROM %[1]s),
			(SELECT COALESCE(sum(%[2]s), 0) FROM %[1]s),
			(SELECT COALESCE(sum(%[3]s), 0) FROM %[1]s),
			(SELECT count(*) FROM %[4]s WHERE %[5]s = $1),
			(SELECT count(*) FROM %[4]s WHERE %[5]s = $2),
			(SELECT count(*) FROM %[4]s WHERE %[5]s <> $3 AND %[6]s = $4::uuid)
	`,
		schema.CatalogBook.Table, schema.CatalogBook.TotalCopies, schema.CatalogBook.AvailableCopies,
		schema.LendingBorrowing.Table, schema.LendingBorrowing.Status, schema.LendingBorrowing.UserID,
	)

	stats := &Stats{}
	err := store.db.QueryRow(context, query,
		string(StatusBorrowed), string(StatusOverdue), string(StatusReturned), owner,
	).Scan(
		&stats.TotalBooks, &stats.TotalCopies, &stats.AvailableCopies,
		&stats.Borrowed, &stats.Overdue, &stats.MyActiveLoans,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "dashboard_stats")
	}
	return stats, nil
}

// # Transaction

type postgresTx struct {
	db pgx.Tx
}

func (tx *postgresTx) BookStock(context context.Context, bookID int) (*Stock, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		schema.CatalogBook.ID, schema.CatalogBook.TotalCopies, schema.CatalogBook.AvailableCopies,
		schema.CatalogBook.Table, schema.CatalogBook.ID,
	)

	stock := &Stock{}
	err := tx.db.QueryRow(context, query, bookID).Scan(&stock.BookID, &stock.TotalCopies, &stock.AvailableCopies)
	if err != nil {
		return nil, dberr.WrapNotFound(err, "Book", "book_stock")
	}
	return stock, nil
}

func (tx *postgresTx) UserExists(context context.Context, userID string) (bool, error) {
	if !uuidv7.Valid(userID) {
		return false, nil
	}

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.UserAccount.Table, schema.UserAccount.ID)

	var exists bool
	err := tx.db.QueryRow(context, query, userID).Scan(&exists)
	return exists, dberr.Wrap(err, "check_user")
}

func (tx *postgresTx) FindActive(context context.Context, userID string, bookID int) (*Record, error) {
	return findActive(context, tx.db, userID, bookID)
}

func (tx *postgresTx) DecrementAvailable(context context.Context, bookID int) (bool, error) {
	query := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = %[2]s - 1, %[3]s = NOW() WHERE %[4]s = $1 AND %[2]s > 0`,
		schema.CatalogBook.Table, schema.CatalogBook.AvailableCopies,
		schema.CatalogBook.UpdatedAt, schema.CatalogBook.ID,
	)

	cmd, err := tx.db.Exec(context, query, bookID)
	if err != nil {
		return false, dberr.Wrap(err, "decrement_available")
	}
	return cmd.RowsAffected() == 1, nil
}

func (tx *postgresTx) InsertRecord(context context.Context, record *Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`,
		schema.LendingBorrowing.Table,
		schema.LendingBorrowing.UserID, schema.LendingBorrowing.BookID,
		schema.LendingBorrowing.BorrowDate, schema.LendingBorrowing.DueDate, schema.LendingBorrowing.Status,
		schema.LendingBorrowing.ID,
	)

	err := tx.db.QueryRow(context, query,
		record.UserID, record.BookID, record.BorrowDate, record.DueDate, string(record.Status),
	).Scan(&record.ID)

	if dberr.IsUniqueViolation(err) && dberr.Constraint(err) == schema.LendingBorrowing.ActiveLoanKey {
		return apperr.AlreadyBorrowed().WithCause(err)
	}
	return dberr.Wrap(err, "insert_record")
}

func (tx *postgresTx) LockRecord(context context.Context, id int) (*Record, error) {
	query, args, err := baseSelect().
		Select(selectColumns()...).
		Where(recordCol(schema.LendingBorrowing.ID).Eq(id)).
		ForUpdate(exp.Wait, goqu.T("r")).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("build lock_record: %w", err))
	}

	record, err := scanRecord(tx.db.QueryRow(context, query, args...))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "Borrowing", "lock_record")
	}
	return record, nil
}

func (tx *postgresTx) MarkReturned(context context.Context, id int, at time.Time) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1 AND %s IN ($4, $5)`,
		schema.LendingBorrowing.Table,
		schema.LendingBorrowing.Status, schema.LendingBorrowing.ReturnDate,
		schema.LendingBorrowing.ID, schema.LendingBorrowing.Status,
	)

	cmd, err := tx.db.Exec(context, query, id, string(StatusReturned), at, string(StatusBorrowed), string(StatusOverdue))
	if err != nil {
		return false, dberr.Wrap(err, "mark_returned")
	}
	return cmd.RowsAffected() == 1, nil
}

func (tx *postgresTx) IncrementAvailable(context context.Context, bookID int) (bool, error) {
	query := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = %[2]s + 1, %[3]s = NOW() WHERE %[4]s = $1 AND %[2]s < %[5]s`,
		schema.CatalogBook.Table, schema.CatalogBook.AvailableCopies,
		schema.CatalogBook.UpdatedAt, schema.CatalogBook.ID, schema.CatalogBook.TotalCopies,
	)

	cmd, err := tx.db.Exec(context, query, bookID)
	if err != nil {
		return false, dberr.Wrap(err, "increment_available")
	}
	return cmd.RowsAffected() == 1, nil
}
