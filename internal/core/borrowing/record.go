// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package borrowing is the lending engine: it keeps each book's available-copy
count consistent with the ledger of outstanding loans.

Lifecycle of a ledger record:

	borrowed ──(due date passes, sweep)──▶ overdue
	    │                                     │
	    └──────────(return)──▶ returned ◀─────┘

Invariants:

  - 0 <= availablecopies <= totalcopies for every book.
  - A book's totalcopies - availablecopies equals its number of records not
    yet returned, as long as only [Service.Borrow] and [Service.Return] move
    the counter.
  - At most one record per (user, book) is not returned.
  - Status only moves forward. ReturnDate is set iff the status is returned.
*/
package borrowing

import "time"

// Status is the stored state of a ledger record.
type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusBorrowed, StatusOverdue, StatusReturned:
		return true
	}
	return false
}

// Active reports whether the copy is still out with the borrower.
func (s Status) Active() bool {
	return s == StatusBorrowed || s == StatusOverdue
}

// Record is one ledger entry: one user holding one copy of one book.
type Record struct {
	ID         int        `json:"id"`
	UserID     string     `json:"user_id"`
	Username   string     `json:"username,omitempty"`
	BookID     int        `json:"book_id"`
	BookTitle  string     `json:"book_title,omitempty"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	Status     Status     `json:"status"`
}

// Filter narrows a ledger listing. Zero values mean "any".
type Filter struct {
	UserID     string
	BookID     int
	Status     Status
	ActiveOnly bool
}

// Stock is a book's copy counters as seen by the engine.
type Stock struct {
	BookID          int
	TotalCopies     int
	AvailableCopies int
}

// Stats holds the dashboard counters.
type Stats struct {
	TotalBooks      int `json:"total_books"`
	TotalCopies     int `json:"total_copies"`
	AvailableCopies int `json:"available_copies"`
	Borrowed        int `json:"borrowed"`
	Overdue         int `json:"overdue"`

	// MyActiveLoans counts the caller's own records that are not returned.
	MyActiveLoans int `json:"my_active_loans"`
}

// SweepResult reports one overdue sweep.
type SweepResult struct {
	AsOf    time.Time `json:"as_of"`
	Updated int       `json:"updated"`
}

const (
	FieldBookID = "book_id"
	FieldUserID = "user_id"
	FieldStatus = "status"
)
