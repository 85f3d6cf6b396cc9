// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrowing

import (
	"context"
	"time"
)

// Store is the persistence capability the engine needs.
//
// Mutations of the copy counters happen only through [Tx], inside
// [Store.WithinTx], so that a failure at any step leaves no partial effect.
type Store interface {
	// WithinTx runs fn in one atomic unit. Any error from fn, or a cancelled
	// context, discards every change made through the Tx.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// SweepOverdue moves borrowed records with DueDate before asOf to overdue
	// and returns how many changed.
	SweepOverdue(ctx context.Context, asOf time.Time) (int, error)

	FindRecord(ctx context.Context, id int) (*Record, error)
	ListRecords(ctx context.Context, filter Filter, limit, offset int) ([]*Record, int, error)

	// FindActive returns the user's unreturned record for the book, or nil.
	FindActive(ctx context.Context, userID string, bookID int) (*Record, error)

	// Stats returns catalogue and ledger counters. MyActiveLoans is computed
	// for userID.
	Stats(ctx context.Context, userID string) (*Stats, error)
}

// Tx is the transactional view used by Borrow and Return.
type Tx interface {
	// BookStock fails with NotFound when the book does not exist.
	BookStock(ctx context.Context, bookID int) (*Stock, error)
	UserExists(ctx context.Context, userID string) (bool, error)
	FindActive(ctx context.Context, userID string, bookID int) (*Record, error)

	// DecrementAvailable takes one copy only while availablecopies > 0.
	// It returns false when no copy was left.
	DecrementAvailable(ctx context.Context, bookID int) (bool, error)

	// InsertRecord assigns record.ID. It fails with AlreadyBorrowed when the
	// user already holds an unreturned record for the book.
	InsertRecord(ctx context.Context, record *Record) error

	// LockRecord reads a record and holds it until the unit ends.
	LockRecord(ctx context.Context, id int) (*Record, error)

	// MarkReturned moves an active record to returned. It returns false when
	// the record was already returned.
	MarkReturned(ctx context.Context, id int, at time.Time) (bool, error)

	// IncrementAvailable gives one copy back only while
	// availablecopies < totalcopies. It returns false when the count was
	// already at the total.
	IncrementAvailable(ctx context.Context, bookID int) (bool, error)
}
