// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrowing

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/sec"
	"github.com/taibuivan/libris/internal/platform/validate"
	"github.com/taibuivan/libris/pkg/clock"
	"github.com/taibuivan/libris/pkg/uuidv7"
)

// DefaultLoanPeriod is the time between borrowing and the due date.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// # Service Layer

// Service drives the borrow, return and overdue transitions.
type Service struct {
	store      Store
	clock      clock.Clock
	loanPeriod time.Duration
	logger     *slog.Logger
}

// NewService constructs the lending engine. A non-positive loanPeriod falls
// back to [DefaultLoanPeriod].
func NewService(store Store, clk clock.Clock, loanPeriod time.Duration, logger *slog.Logger) *Service {
	if loanPeriod <= 0 {
		loanPeriod = DefaultLoanPeriod
	}

	return &Service{
		store:      store,
		clock:      clk,
		loanPeriod: loanPeriod,
		logger:     logger,
	}
}

// # Transitions

/*
Borrow lends one copy of a book to the caller.

Checks run in this order: book exists, borrower exists, no unreturned record
for the same book, a copy is left. The decrement and the new record are
written in one atomic unit.

Parameters:
  - context: context.Context
  - actor: sec.Actor (the borrower)
  - bookID: int

Returns:
  - *Record: The new record with status borrowed
  - error: NotFound, AlreadyBorrowed or OutOfStock
*/
func (service *Service) Borrow(context context.Context, actor sec.Actor, bookID int) (*Record, error) {
	if bookID <= 0 {
		return nil, validate.RequiredError(FieldBookID, "Must be a positive integer")
	}

	now := service.clock.Now()
	record := &Record{
		UserID:     actor.UserID,
		BookID:     bookID,
		BorrowDate: now,
		DueDate:    now.Add(service.loanPeriod),
		Status:     StatusBorrowed,
	}

	err := service.store.WithinTx(context, func(tx Tx) error {
		if _, err := tx.BookStock(context, bookID); err != nil {
			return err
		}

		exists, err := tx.UserExists(context, actor.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("User")
		}

		active, err := tx.FindActive(context, actor.UserID, bookID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperr.AlreadyBorrowed()
		}

		// Re-checks availability in the same statement that takes the copy.
		taken, err := tx.DecrementAvailable(context, bookID)
		if err != nil {
			return err
		}
		if !taken {
			return apperr.OutOfStock()
		}

		return tx.InsertRecord(context, record)
	})
	if err != nil {
		return nil, apperr.FromContext(err)
	}

	service.logger.InfoContext(context, "book_borrowed",
		slog.Int("record_id", record.ID),
		slog.Int("book_id", bookID),
		slog.String("user_id", actor.UserID),
		slog.Time("due_date", record.DueDate),
	)
	return record, nil
}

/*
Return closes a borrowed or overdue record and gives the copy back.

Members may only return their own records. The increment is clamped at the
book's total; a clamped increment is logged because it means the counter had
drifted from the ledger.

Returns:
  - *Record: The record with status returned and ReturnDate set
  - error: NotFound, Forbidden or AlreadyReturned (no mutation)
*/
func (service *Service) Return(context context.Context, actor sec.Actor, recordID int) (*Record, error) {
	now := service.clock.Now()

	var record *Record
	var clamped bool

	err := service.store.WithinTx(context, func(tx Tx) error {
		locked, err := tx.LockRecord(context, recordID)
		if err != nil {
			return err
		}

		if !actor.CanAccess(locked.UserID) {
			return apperr.Forbidden("You can only return your own borrowings")
		}

		if !locked.Status.Active() {
			return apperr.AlreadyReturned()
		}

		changed, err := tx.MarkReturned(context, recordID, now)
		if err != nil {
			return err
		}
		if !changed {
			return apperr.AlreadyReturned()
		}

		incremented, err := tx.IncrementAvailable(context, locked.BookID)
		if err != nil {
			return err
		}
		clamped = !incremented

		locked.Status = StatusReturned
		locked.ReturnDate = &now
		record = locked
		return nil
	})
	if err != nil {
		return nil, apperr.FromContext(err)
	}

	if clamped {
		service.logger.WarnContext(context, "return_increment_clamped",
			slog.Int("record_id", record.ID),
			slog.Int("book_id", record.BookID),
		)
	}

	service.logger.InfoContext(context, "book_returned",
		slog.Int("record_id", record.ID),
		slog.Int("book_id", record.BookID),
		slog.String("user_id", record.UserID),
		slog.Bool("late", now.After(record.DueDate)),
	)
	return record, nil
}

/*
SweepOverdue promotes every borrowed record whose due date is before asOf.

Running it again with the same asOf changes nothing.

Returns:
  - int: Number of records moved to overdue
  - error: Storage failures
*/
func (service *Service) SweepOverdue(context context.Context, asOf time.Time) (int, error) {
	updated, err := service.store.SweepOverdue(context, asOf)
	if err != nil {
		return 0, err
	}

	if updated > 0 {
		service.logger.InfoContext(context, "overdue_swept",
			slog.Int("updated", updated),
			slog.Time("as_of", asOf),
		)
	}
	return updated, nil
}

// Sweep runs [Service.SweepOverdue] at the current time.
func (service *Service) Sweep(context context.Context) (*SweepResult, error) {
	asOf := service.clock.Now()
	updated, err := service.SweepOverdue(context, asOf)
	if err != nil {
		return nil, err
	}
	return &SweepResult{AsOf: asOf, Updated: updated}, nil
}

// # Reads
//
// Every read sweeps first so the reported status is current.

// GetRecord returns one record. Members may only read their own.
func (service *Service) GetRecord(context context.Context, actor sec.Actor, id int) (*Record, error) {
	if _, err := service.Sweep(context); err != nil {
		return nil, err
	}

	record, err := service.store.FindRecord(context, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(record.UserID) {
		return nil, apperr.Forbidden("You can only view your own borrowings")
	}
	return record, nil
}

/*
ListRecords pages through the ledger, newest first.

Members always see only their own records; the UserID filter is forced to
the caller. Admins may filter by any user.

Returns:
  - []*Record: One page of records
  - int: Total matching count
  - error: ValidationError for a malformed filter, or storage failures
*/
func (service *Service) ListRecords(context context.Context, actor sec.Actor, filter Filter, limit, offset int) ([]*Record, int, error) {
	if !actor.IsAdmin() {
		filter.UserID = actor.UserID
	}

	validator := &validate.Validator{}
	validator.Custom(FieldUserID, filter.UserID != "" && !uuidv7.Valid(filter.UserID), "Must be a valid UUID")
	if filter.Status != "" {
		validator.OneOf(FieldStatus, string(filter.Status),
			string(StatusBorrowed), string(StatusOverdue), string(StatusReturned))
	}
	if err := validator.Err(); err != nil {
		return nil, 0, err
	}

	if _, err := service.Sweep(context); err != nil {
		return nil, 0, err
	}

	return service.store.ListRecords(context, filter, limit, offset)
}

// ActiveLoan returns the caller's unreturned record for a book.
func (service *Service) ActiveLoan(context context.Context, actor sec.Actor, bookID int) (*Record, error) {
	if _, err := service.Sweep(context); err != nil {
		return nil, err
	}

	record, err := service.store.FindActive(context, actor.UserID, bookID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperr.NotFound("Active loan")
	}
	return record, nil
}

// Stats returns the dashboard counters for the caller.
func (service *Service) Stats(context context.Context, actor sec.Actor) (*Stats, error) {
	if _, err := service.Sweep(context); err != nil {
		return nil, err
	}
	return service.store.Stats(context, actor.UserID)
}
