// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrowing

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/taibuivan/libris/internal/platform/apperr"
)

// MemoryStore is an in-process [Store]. Units run one at a time under a
// single lock and work on a copy of the state that is swapped in only when
// fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryBook struct {
	Title           string
	TotalCopies     int
	AvailableCopies int
}

type memoryState struct {
	books   map[int]memoryBook
	users   map[string]string
	records map[int]Record
	nextID  int
}

func (s memoryState) clone() memoryState {
	return memoryState{
		books:   maps.Clone(s.books),
		users:   maps.Clone(s.users),
		records: maps.Clone(s.records),
		nextID:  s.nextID,
	}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: memoryState{
			books:   map[int]memoryBook{},
			users:   map[string]string{},
			records: map[int]Record{},
		},
	}
}

// # Seeding

// AddBook registers a book with all of its copies available.
func (store *MemoryStore) AddBook(id int, title string, totalCopies int) {
	store.SetStock(id, title, totalCopies, totalCopies)
}

// SetStock registers or overwrites a book's counters.
func (store *MemoryStore) SetStock(id int, title string, totalCopies, availableCopies int) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.state.books[id] = memoryBook{Title: title, TotalCopies: totalCopies, AvailableCopies: availableCopies}
}

// AddUser registers a borrower.
func (store *MemoryStore) AddUser(id, username string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.state.users[id] = username
}

// Stock returns the current counters of a book.
func (store *MemoryStore) Stock(bookID int) (Stock, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	book, ok := store.state.books[bookID]
	if !ok {
		return Stock{}, false
	}
	return Stock{BookID: bookID, TotalCopies: book.TotalCopies, AvailableCopies: book.AvailableCopies}, true
}

// # Store

func (store *MemoryStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := store.state.clone()
	if err := fn(&memoryTx{state: &working}); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	store.state = working
	return nil
}

func (store *MemoryStore) SweepOverdue(_ context.Context, asOf time.Time) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	updated := 0
	for id, record := range store.state.records {
		if record.Status == StatusBorrowed && record.DueDate.Before(asOf) {
			record.Status = StatusOverdue
			store.state.records[id] = record
			updated++
		}
	}
	return updated, nil
}

func (store *MemoryStore) FindRecord(_ context.Context, id int) (*Record, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	record, ok := store.state.records[id]
	if !ok {
		return nil, apperr.NotFound("Borrowing")
	}
	return store.state.view(record), nil
}

func (store *MemoryStore) ListRecords(_ context.Context, filter Filter, limit, offset int) ([]*Record, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var matched []Record
	for _, record := range store.state.records {
		if filter.matches(record) {
			matched = append(matched, record)
		}
	}

	slices.SortFunc(matched, func(a, b Record) int {
		if c := b.BorrowDate.Compare(a.BorrowDate); c != 0 {
			return c
		}
		return b.ID - a.ID
	})

	total := len(matched)
	start := min(offset, total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}

	records := make([]*Record, 0, end-start)
	for _, record := range matched[start:end] {
		records = append(records, store.state.view(record))
	}
	return records, total, nil
}

func (store *MemoryStore) FindActive(_ context.Context, userID string, bookID int) (*Record, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.state.findActive(userID, bookID), nil
}

func (store *MemoryStore) Stats(_ context.Context, userID string) (*Stats, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	stats := &Stats{TotalBooks: len(store.state.books)}
	for _, book := range store.state.books {
		stats.TotalCopies += book.TotalCopies
		stats.AvailableCopies += book.AvailableCopies
	}

	for _, record := range store.state.records {
		switch record.Status {
		case StatusBorrowed:
			stats.Borrowed++
		case StatusOverdue:
			stats.Overdue++
		}
		if record.Status.Active() && record.UserID == userID {
			stats.MyActiveLoans++
		}
	}
	return stats, nil
}

func (f Filter) matches(record Record) bool {
	if f.UserID != "" && record.UserID != f.UserID {
		return false
	}
	if f.BookID > 0 && record.BookID != f.BookID {
		return false
	}
	if f.Status != "" && record.Status != f.Status {
		return false
	}
	if f.ActiveOnly && !record.Status.Active() {
		return false
	}
	return true
}

func (s *memoryState) view(record Record) *Record {
	record.Username = s.users[record.UserID]
	record.BookTitle = s.books[record.BookID].Title
	return &record
}

func (s *memoryState) findActive(userID string, bookID int) *Record {
	for _, record := range s.records {
		if record.UserID == userID && record.BookID == bookID && record.Status.Active() {
			return s.view(record)
		}
	}
	return nil
}

// # Transaction

type memoryTx struct {
	state *memoryState
}

func (tx *memoryTx) BookStock(_ context.Context, bookID int) (*Stock, error) {
	book, ok := tx.state.books[bookID]
	if !ok {
		return nil, apperr.NotFound("Book")
	}
	return &Stock{BookID: bookID, TotalCopies: book.TotalCopies, AvailableCopies: book.AvailableCopies}, nil
}

func (tx *memoryTx) UserExists(_ context.Context, userID string) (bool, error) {
	_, ok := tx.state.users[userID]
	return ok, nil
}

func (tx *memoryTx) FindActive(_ context.Context, userID string, bookID int) (*Record, error) {
	return tx.state.findActive(userID, bookID), nil
}

func (tx *memoryTx) DecrementAvailable(_ context.Context, bookID int) (bool, error) {
	book, ok := tx.state.books[bookID]
	if !ok || book.AvailableCopies <= 0 {
		return false, nil
	}
	book.AvailableCopies--
	tx.state.books[bookID] = book
	return true, nil
}

func (tx *memoryTx) InsertRecord(_ context.Context, record *Record) error {
	if tx.state.findActive(record.UserID, record.BookID) != nil {
		return apperr.AlreadyBorrowed()
	}

	tx.state.nextID++
	record.ID = tx.state.nextID
	tx.state.records[record.ID] = *record
	return nil
}

func (tx *memoryTx) LockRecord(_ context.Context, id int) (*Record, error) {
	record, ok := tx.state.records[id]
	if !ok {
		return nil, apperr.NotFound("Borrowing")
	}
	return tx.state.view(record), nil
}

func (tx *memoryTx) MarkReturned(_ context.Context, id int, at time.Time) (bool, error) {
	record, ok := tx.state.records[id]
	if !ok || !record.Status.Active() {
		return false, nil
	}
	record.Status = StatusReturned
	record.ReturnDate = &at
	tx.state.records[id] = record
	return true, nil
}

func (tx *memoryTx) IncrementAvailable(_ context.Context, bookID int) (bool, error) {
	book, ok := tx.state.books[bookID]
	if !ok || book.AvailableCopies >= book.TotalCopies {
		return false, nil
	}
	book.AvailableCopies++
	tx.state.books[bookID] = book
	return true, nil
}
