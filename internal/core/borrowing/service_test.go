// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrowing_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/core/borrowing"
	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/sec"
	"github.com/taibuivan/libris/pkg/clock"
	"github.com/taibuivan/libris/pkg/uuidv7"
)

const loanPeriod = 14 * 24 * time.Hour

var startOfTerm = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store   *borrowing.MemoryStore
	clock   *clock.Fixed
	service *borrowing.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := borrowing.NewMemoryStore()
	fixed := clock.NewFixed(startOfTerm)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		store:   store,
		clock:   fixed,
		service: borrowing.NewService(store, fixed, loanPeriod, logger),
	}
}

func (f *fixture) member(username string) sec.Actor {
	id := uuidv7.New()
	f.store.AddUser(id, username)
	return sec.Actor{UserID: id, Role: sec.RoleMember}
}

func (f *fixture) admin() sec.Actor {
	id := uuidv7.New()
	f.store.AddUser(id, "librarian")
	return sec.Actor{UserID: id, Role: sec.RoleAdmin}
}

func (f *fixture) available(t *testing.T, bookID int) int {
	t.Helper()
	stock, ok := f.store.Stock(bookID)
	require.True(t, ok)
	return stock.AvailableCopies
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, code), "expected %s, got %v", code, err)
}

/*
TestBorrow_CreatesRecord checks the dates, status and counter of a new loan.
*/
func TestBorrow_CreatesRecord(t *testing.T) {
	f := newFixture(t)
	f.store.AddBook(1, "The Dispossessed", 3)
	alice := f.member("alice")

	record, err := f.service.Borrow(context.Background(), alice, 1)
	require.NoError(t, err)

	assert.NotZero(t, record.ID)
	assert.Equal(t, borrowing.StatusBorrowed, record.Status)
	assert.Equal(t, startOfTerm, record.BorrowDate)
	assert.Equal(t, startOfTerm.Add(loanPeriod), record.DueDate)
	assert.Nil(t, record.ReturnDate)
	assert.Equal(t, 2, f.available(t, 1))
}

/*
TestBorrow_Rejections covers every refusal and checks that none of them
touches the counter.
*/
func TestBorrow_Rejections(t *testing.T) {
	f := newFixture(t)
	f.store.AddBook(1, "Kindred", 1)
	alice := f.member("alice")
	bob := f.member("bob")
	ghost := sec.Actor{UserID: uuidv7.New(), Role: sec.RoleMember}

	_, err := f.service.Borrow(context.Background(), alice, 99)
	requireCode(t, err, apperr.CodeNotFound)

	_, err = f.service.Borrow(context.Background(), ghost, 1)
	requireCode(t, err, apperr.CodeNotFound)
	assert.Equal(t, 1, f.available(t, 1))

	_, err = f.service.Borrow(context.Background(), alice, 1)
	require.NoError(t, err)

	_, err = f.service.Borrow(context.Background(), alice, 1)
	requireCode(t, err, apperr.CodeAlreadyBorrowed)

	_, err = f.service.Borrow(context.Background(), bob, 1)
	requireCode(t, err, apperr.CodeOutOfStock)

	assert.Equal(t, 0, f.available(t, 1))
}

/*
TestBorrow_AlreadyBorrowedWinsOverOutOfStock reports the duplicate loan even
when the book has no copies left.
*/
func TestBorrow_AlreadyBorrowedWinsOverOutOfStock(t *testing.T) {
	f := newFixture(t)
	f.store.AddBook(1, "Kindred", 1)
	alice := f.member("alice")

	_, err := f.service.Borrow(context.Background(), alice, 1)
	require.NoError(t, err)

	_, err = f.service.Borrow(context.Background(), alice, 1)
	requireCode(t, err, apperr.CodeAlreadyBorrowed)
}

/*
TestLending_TwoCopiesThreeMembers walks through a shared title with more
readers than copies.
*/
func TestLending_TwoCopiesThreeMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddBook(7, "Parable of the Sower", 2)
	alice, bob, carol := f.member("alice"), f.member("bob"), f.member("carol")

	aliceLoan, err := f.service.Borrow(ctx, alice, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, f.available(t, 7))

	_, err = f.service.Borrow(ctx, bob, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, f.available(t, 7))

	_, err = f.service.Borrow(ctx, carol, 7)
	requireCode(t, err, apperr.CodeOutOfStock)

	_, err = f.service.Return(ctx, alice, aliceLoan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.available(t, 7))

	_, err = f.service.Borrow(ctx, carol, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, f.available(t, 7))
}

/*
TestLending_OverdueThenReturned moves a loan past its due date, sweeps it and
still accepts the late return.
*/
func TestLending_OverdueThenReturned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddBook(1, "Lilith's Brood", 1)
	alice := f.member("alice")

	loan, err := f.service.Borrow(ctx, alice, 1)
	require.NoError(t, err)

	f.clock.Set(loan.DueDate.Add(24 * time.Hour))

	updated, err := f.service.SweepOverdue(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	record, err := f.service.GetRecord(ctx, alice, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, borrowing.StatusOverdue, record.Status)

	returned, err := f.service.Return(ctx, alice, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, borrowing.StatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, f.clock.Now(), *returned.ReturnDate)
	assert.Equal(t, 1, f.available(t, 1))
}

/*
TestSweepOverdue_Idempotent leaves loans alone until the due date has passed
and changes nothing on a repeated run.
*/
func TestSweepOverdue_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddBook(1, "Dawn", 2)
	alice, bob := f.member("alice"), f.member("bob")

	_, err := f.service.Borrow(ctx, alice, 1)
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	_, err = f.service.Borrow(ctx, bob, 1)
	require.NoError(t, err)

	// Exactly on alice's due date nothing is overdue yet.
	updated, err := f.service.SweepOverdue(ctx, startOfTerm.Add(loanPeriod))
	require.NoError(t, err)
	assert.Zero(t, updated)

	asOf := startOfTerm.Add(loanPeriod + time.Hour)
	updated, err = f.service.SweepOverdue(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	updated, err = f.service.SweepOverdue(ctx, asOf)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

/*
TestReturn_Twice rejects the second return without moving the counter.
*/
func TestReturn_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddBook(1, "Wild Seed", 2)
	alice := f.member("alice")

	loan, err := f.service.Borrow(ctx, alice, 1)
	require.NoError(t, err)

	_, err = f.service.Return(ctx, alice, loan.ID)
	require.NoError(t, err)

	_, err = f.service.Return(ctx, alice, loan.ID)
	requireCode(t, err, apperr.CodeAlreadyReturned)
	assert.Equal(t, 2, f.available(t, 1))

	_, err = f.service.Return(ctx, alice, 404)
	requireCode(t, err, apperr.CodeNotFound)
}

/*
TestReturn_Ownership lets members return only their own loans while admins
may return any.
*/
func TestReturn_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddBook(1, "Fledgling", 1)
	alice, bob := f.member("alice"), f.member("bob")
	librarian := f.admin()

	loan, err := f.service.Borrow(ctx, alice, 1)
	require.NoError(t, err)

	_, err = f.service.Return(ctx, bob, loan.ID)
	requireCode(t, err, apperr.CodeForbidden)
	assert.Equal(t, 0, f.available(t, 1))

	_, err = f.service.GetRecord(ctx, bob, loan.ID)
	requireCode(t, err, apperr.CodeForbidden)

	returned, err := f.service.Return(ctx, librarian, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, returned.UserID)
	assert.Equal(t, 1, f.available(t, 1))
}

/*
TestReturn_ClampsAtTotal never lets the counter exceed the total even when it
has drifted from the ledger.
*/
func TestReturn_ClampsAtTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddBook(1, "Mind of My Mind", 1)
	alice := f.member("alice")

	loan, err := f.service.Borrow(ctx, alice, 1)
	require.NoError(t, err)

	// Someone restored the counter by hand.
	f.store.SetStock(1, "Mind of My Mind", 1, 1)

	returned, err := f.service.Return(ctx, alice, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, borrowing.StatusReturned, returned.Status)
	assert.Equal(t, 1, f.available(t, 1))
}

/*
TestBorrow_Concurrent races more members than copies; exactly the number of
copies succeed and the rest are out of stock.
*/
func TestBorrow_Concurrent(t *testing.T) {
	const copies, members = 3, 12

	f := newFixture(t)
	f.store.AddBook(1, "Bloodchild", copies)

	actors := make([]sec.Actor, members)
	for i := range actors {
		actors[i] = f.member("reader")
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		outOfStock int
	)

	for _, actor := range actors {
		wg.Add(1)
		go func(actor sec.Actor) {
			defer wg.Done()
			_, err := f.service.Borrow(context.Background(), actor, 1)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperr.HasCode(err, apperr.CodeOutOfStock):
				outOfStock++
			}
		}(actor)
	}
	wg.Wait()

	assert.Equal(t, copies, successes)
	assert.Equal(t, members-copies, outOfStock)
	assert.Equal(t, 0, f.available(t, 1))
}

/*
TestWithinTx_CancelledContext discards the unit when the context is already
done.
*/
func TestWithinTx_CancelledContext(t *testing.T) {
	f := newFixture(t)
	f.store.AddBook(1, "Survivor", 1)
	alice := f.member("alice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Borrow(ctx, alice, 1)
	require.ErrorIs(t, err, context.Canceled)
	requireCode(t, err, apperr.CodeCanceled)
	assert.Equal(t, 1, f.available(t, 1))
}

// failingStore injects an error into a chosen step of every unit of work.
type failingStore struct {
	borrowing.Store
	failInsert    bool
	failIncrement bool
}

func (store *failingStore) WithinTx(ctx context.Context, fn func(tx borrowing.Tx) error) error {
	return store.Store.WithinTx(ctx, func(tx borrowing.Tx) error {
		return fn(&failingTx{Tx: tx, store: store})
	})
}

type failingTx struct {
	borrowing.Tx
	store *failingStore
}

var errStorage = errors.New("storage unavailable")

func (tx *failingTx) InsertRecord(ctx context.Context, record *borrowing.Record) error {
	if tx.store.failInsert {
		return errStorage
	}
	return tx.Tx.InsertRecord(ctx, record)
}

func (tx *failingTx) IncrementAvailable(ctx context.Context, bookID int) (bool, error) {
	if tx.store.failIncrement {
		return false, errStorage
	}
	return tx.Tx.IncrementAvailable(ctx, bookID)
}

/*
TestBorrow_FailureAfterDecrementLeavesStock rolls back the taken copy when
the record cannot be written.
*/
func TestBorrow_FailureAfterDecrementLeavesStock(t *testing.T) {
	f := newFixture(t)
	store := &failingStore{Store: f.store, failInsert: true}
	service := borrowing.NewService(store, f.clock, loanPeriod, slog.New(slog.NewTextHandler(io.Discard, nil)))

	f.store.AddBook(1, "Survivor", 1)
	alice := f.member("alice")

	_, err := service.Borrow(context.Background(), alice, 1)
	require.ErrorIs(t, err, errStorage)
	assert.Equal(t, 1, f.available(t, 1))

	active, err := f.store.FindActive(context.Background(), alice.UserID, 1)
	require.NoError(t, err)
	assert.Nil(t, active)

	records, total, err := f.store.ListRecords(context.Background(), borrowing.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, total)
}

/*
TestReturn_FailureAfterMarkKeepsLoanActive keeps the record borrowed and the
stock unchanged when the copy cannot be given back.
*/
func TestReturn_FailureAfterMarkKeepsLoanActive(t *testing.T) {
	f := newFixture(t)
	f.store.AddBook(1, "Survivor", 1)
	alice := f.member("alice")

	record, err := f.service.Borrow(context.Background(), alice, 1)
	require.NoError(t, err)

	store := &failingStore{Store: f.store, failIncrement: true}
	service := borrowing.NewService(store, f.clock, loanPeriod, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = service.Return(context.Background(), alice, record.ID)
	require.ErrorIs(t, err, errStorage)
	assert.Equal(t, 0, f.available(t, 1))

	stored, err := f.store.FindRecord(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, borrowing.StatusBorrowed, stored.Status)
	assert.Nil(t, stored.ReturnDate)
}

/*
TestListRecords_Scoping restricts members to their own ledger and validates
the filter.
*/
func TestListRecords_Scoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddBook(1, "Imago", 2)
	f.store.AddBook(2, "Adulthood Rites", 2)
	alice, bob := f.member("alice"), f.member("bob")
	librarian := f.admin()

	_, err := f.service.Borrow(ctx, alice, 1)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.service.Borrow(ctx, alice, 2)
	require.NoError(t, err)
	_, err = f.service.Borrow(ctx, bob, 1)
	require.NoError(t, err)

	// A member asking for someone else's ledger still gets their own.
	records, total, err := f.service.ListRecords(ctx, alice, borrowing.Filter{UserID: bob.UserID}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, record := range records {
		assert.Equal(t, alice.UserID, record.UserID)
	}
	assert.Equal(t, "Adulthood Rites", records[0].BookTitle)

	_, total, err = f.service.ListRecords(ctx, librarian, borrowing.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	_, total, err = f.service.ListRecords(ctx, librarian, borrowing.Filter{BookID: 1}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, _, err = f.service.ListRecords(ctx, librarian, borrowing.Filter{Status: "lost"}, 10, 0)
	requireCode(t, err, apperr.CodeValidation)

	_, _, err = f.service.ListRecords(ctx, librarian, borrowing.Filter{UserID: "not-a-uuid"}, 10, 0)
	requireCode(t, err, apperr.CodeValidation)
}

/*
TestActiveLoan_And_Stats reads the caller's loan and the dashboard counters.
*/
func TestActiveLoan_And_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddBook(1, "Clay's Ark", 2)
	f.store.AddBook(2, "Patternmaster", 1)
	alice, bob := f.member("alice"), f.member("bob")

	_, err := f.service.ActiveLoan(ctx, alice, 1)
	requireCode(t, err, apperr.CodeNotFound)

	loan, err := f.service.Borrow(ctx, alice, 1)
	require.NoError(t, err)
	_, err = f.service.Borrow(ctx, bob, 2)
	require.NoError(t, err)

	active, err := f.service.ActiveLoan(ctx, alice, 1)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, active.ID)

	f.clock.Set(loan.DueDate.Add(time.Second))

	stats, err := f.service.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, borrowing.Stats{
		TotalBooks:      2,
		TotalCopies:     3,
		AvailableCopies: 1,
		Borrowed:        0,
		Overdue:         2,
		MyActiveLoans:   1,
	}, *stats)
}

/*
TestNewService_DefaultLoanPeriod falls back to two weeks.
*/
func TestNewService_DefaultLoanPeriod(t *testing.T) {
	store := borrowing.NewMemoryStore()
	store.AddBook(1, "Unexpected Stories", 1)
	userID := uuidv7.New()
	store.AddUser(userID, "alice")

	service := borrowing.NewService(store, clock.NewFixed(startOfTerm), 0, slog.New(slog.NewTextHandler(io.Discard, nil)))

	record, err := service.Borrow(context.Background(), sec.Actor{UserID: userID, Role: sec.RoleMember}, 1)
	require.NoError(t, err)
	assert.Equal(t, startOfTerm.Add(borrowing.DefaultLoanPeriod), record.DueDate)
}
