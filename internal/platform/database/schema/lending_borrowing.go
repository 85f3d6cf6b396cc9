package schema

// LendingBorrowingTable represents the 'lending.borrowing' table
type LendingBorrowingTable struct {
	Table      string
	ID         string
	UserID     string
	BookID     string
	BorrowDate string
	DueDate    string
	ReturnDate string
	Status     string

	// ActiveLoanKey is the partial unique index over (userid, bookid)
	// for rows whose status is not 'returned'.
	ActiveLoanKey string
}

// LendingBorrowing is the schema definition for lending.borrowing
var LendingBorrowing = LendingBorrowingTable{
	Table:         "lending.borrowing",
	ID:            "id",
	UserID:        "userid",
	BookID:        "bookid",
	BorrowDate:    "borrowdate",
	DueDate:       "duedate",
	ReturnDate:    "returndate",
	Status:        "status",
	ActiveLoanKey: "borrowing_active_loan_key",
}

// Columns returns all standard column names
func (t LendingBorrowingTable) Columns() []string {
	return []string{t.ID, t.UserID, t.BookID, t.BorrowDate, t.DueDate, t.ReturnDate, t.Status}
}
