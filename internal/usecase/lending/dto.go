package lending

import (
	library "lending-service/internal/domain/library"
)

// BorrowRequest asks to borrow one book for the acting user.
type BorrowRequest struct {
	BookID int64
}

// BorrowResponse carries the created loan and the book's refreshed state.
// The book is re-fetched from the store after the writes, never assumed.
type BorrowResponse struct {
	Book library.Book
	Loan library.Loan
}

// ReturnRequest asks to return one book for the acting user.
type ReturnRequest struct {
	BookID int64
}

// ReturnResponse carries the closed loan and the book's refreshed state.
type ReturnResponse struct {
	Book library.Book
	Loan library.Loan
}

// ReconcileRequest asks for a read-only consistency check of one book.
type ReconcileRequest struct {
	BookID int64
}

// ReconcileReport compares a book's stored available flag against the
// truth derived from its loan history. It is a finding, not a failure:
// the check itself succeeded even when the state has drifted.
type ReconcileReport struct {
	BookID            int64
	Available         bool
	ExpectedAvailable bool
	OpenLoanIDs       []int64

	// Stale is true when Available differs from ExpectedAvailable,
	// the drift left behind by a partially failed borrow or return.
	Stale bool

	// DoubleBorrow is true when more than one open loan exists, the
	// after-the-fact trace of a read-then-write race between clients.
	DoubleBorrow bool
}
