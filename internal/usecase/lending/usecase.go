// Package lending implements the borrow/return engine. A borrow or
// return is two sequential writes against a store that offers no
// cross-record atomicity, so the engine's job is ordering those writes
// so that any partial failure leaves a detectable, re-derivable state
// rather than an undefined one.
package lending

import (
	"context"
	"time"

	"go.uber.org/zap"

	library "lending-service/internal/domain/library"
	apperrors "lending-service/pkg/errors"
)

const dateLayout = "2006-01-02"

// BookRepository is the slice of book access the engine needs.
type BookRepository interface {
	GetByID(ctx context.Context, id int64) (*library.Book, error)
	SetAvailable(ctx context.Context, id int64, available bool) (*library.Book, error)
}

// LoanRepository is the slice of loan access the engine needs. FindOpen
// and ListOpenByUser return loans ordered by id ascending.
type LoanRepository interface {
	Create(ctx context.Context, l *library.Loan) (*library.Loan, error)
	FindOpen(ctx context.Context, userID, bookID int64) ([]library.Loan, error)
	ListByBook(ctx context.Context, bookID int64) ([]library.Loan, error)
	ListOpenByUser(ctx context.Context, userID int64) ([]library.Loan, error)
	MarkReturned(ctx context.Context, id int64, returnDate string) (*library.Loan, error)
}

// Usecase executes borrow, return and the reconcile diagnostic.
type Usecase struct {
	books BookRepository
	loans LoanRepository
	log   *zap.Logger
	now   func() time.Time
}

// New creates a lending engine over the given repositories.
func New(books BookRepository, loans LoanRepository, log *zap.Logger) *Usecase {
	return &Usecase{books: books, loans: loans, log: log, now: time.Now}
}

// Borrow lends a book to the actor.
//
// The loan record is written before the book flag on purpose: if the
// flag write fails, what remains is an open loan on a book still marked
// available. That state names its own repair (re-derive availability
// from loans); the reverse order would leave an unavailable book with
// nothing explaining why. Neither write is rolled back, and a failed
// flag write must be retried on its own, never the loan write.
func (uc *Usecase) Borrow(ctx context.Context, actor *library.Actor, in BorrowRequest) (*BorrowResponse, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("borrow")
	}

	book, err := uc.books.GetByID(ctx, in.BookID)
	if err != nil {
		return nil, err
	}
	if !book.Available {
		uc.log.Info("borrow rejected, book unavailable",
			zap.Int64("book_id", book.ID),
			zap.Int64("user_id", actor.ID),
		)
		return nil, &apperrors.BookUnavailableError{BookID: book.ID}
	}

	loan, err := uc.loans.Create(ctx, &library.Loan{
		UserID: actor.ID,
		BookID: book.ID,
		Date:   uc.now().Format(dateLayout),
		Status: library.StatusBorrowed,
	})
	if err != nil {
		uc.log.Error("borrow failed before any write landed",
			zap.Int64("book_id", book.ID),
			zap.Int64("user_id", actor.ID),
			zap.Error(err),
		)
		return nil, &apperrors.BorrowFailedError{BookID: book.ID, Step: apperrors.StepLoanWrite, Err: err}
	}

	if _, err := uc.books.SetAvailable(ctx, book.ID, false); err != nil {
		uc.log.Error("borrow left open loan on available book, reconcile will surface it",
			zap.Int64("book_id", book.ID),
			zap.Int64("loan_id", loan.ID),
			zap.Error(err),
		)
		return nil, &apperrors.BorrowFailedError{BookID: book.ID, Step: apperrors.StepBookFlag, Err: err}
	}

	refreshed, err := uc.books.GetByID(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	uc.log.Info("book borrowed",
		zap.Int64("book_id", book.ID),
		zap.Int64("user_id", actor.ID),
		zap.Int64("loan_id", loan.ID),
	)
	return &BorrowResponse{Book: *refreshed, Loan: *loan}, nil
}

// Return closes the actor's open loan on a book.
//
// Mirror of Borrow: the loan is closed before the book is freed, so a
// failed flag write leaves a closed loan on a still-unavailable book,
// which blocks nothing worse than an extra reconcile. Freeing the book
// first could let a second borrow in under an open loan.
func (uc *Usecase) Return(ctx context.Context, actor *library.Actor, in ReturnRequest) (*ReturnResponse, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("return")
	}

	open, err := uc.loans.FindOpen(ctx, actor.ID, in.BookID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, &apperrors.NoActiveLoanError{UserID: actor.ID, BookID: in.BookID}
	}
	if len(open) > 1 {
		// Should not exist under the invariant, but the store enforces no
		// uniqueness. Lowest loan id wins; the rest stay for reconcile.
		uc.log.Warn("multiple open loans for one user/book pair",
			zap.Int64("book_id", in.BookID),
			zap.Int64("user_id", actor.ID),
			zap.Int("count", len(open)),
		)
	}
	selected := open[0]

	closed, err := uc.loans.MarkReturned(ctx, selected.ID, uc.now().Format(dateLayout))
	if err != nil {
		uc.log.Error("return failed before any write landed",
			zap.Int64("loan_id", selected.ID),
			zap.Error(err),
		)
		return nil, &apperrors.ReturnFailedError{BookID: in.BookID, LoanID: selected.ID, Step: apperrors.StepLoanWrite, Err: err}
	}

	if _, err := uc.books.SetAvailable(ctx, in.BookID, true); err != nil {
		uc.log.Error("return left closed loan on unavailable book, reconcile will surface it",
			zap.Int64("book_id", in.BookID),
			zap.Int64("loan_id", selected.ID),
			zap.Error(err),
		)
		return nil, &apperrors.ReturnFailedError{BookID: in.BookID, LoanID: selected.ID, Step: apperrors.StepBookFlag, Err: err}
	}

	refreshed, err := uc.books.GetByID(ctx, in.BookID)
	if err != nil {
		return nil, err
	}

	uc.log.Info("book returned",
		zap.Int64("book_id", in.BookID),
		zap.Int64("user_id", actor.ID),
		zap.Int64("loan_id", selected.ID),
	)
	return &ReturnResponse{Book: *refreshed, Loan: *closed}, nil
}

// Reconcile derives a book's expected availability from its loan history
// and reports any drift. It issues no writes; whether and how to repair
// is the caller's call.
func (uc *Usecase) Reconcile(ctx context.Context, in ReconcileRequest) (*ReconcileReport, error) {
	book, err := uc.books.GetByID(ctx, in.BookID)
	if err != nil {
		return nil, err
	}

	loans, err := uc.loans.ListByBook(ctx, in.BookID)
	if err != nil {
		return nil, err
	}

	var openIDs []int64
	for _, l := range loans {
		if l.Open() {
			openIDs = append(openIDs, l.ID)
		}
	}

	expected := len(openIDs) == 0
	report := &ReconcileReport{
		BookID:            book.ID,
		Available:         book.Available,
		ExpectedAvailable: expected,
		OpenLoanIDs:       openIDs,
		Stale:             book.Available != expected,
		DoubleBorrow:      len(openIDs) > 1,
	}

	if report.Stale {
		uc.log.Warn("stale availability detected",
			zap.Int64("book_id", book.ID),
			zap.Bool("available", book.Available),
			zap.Bool("expected", expected),
			zap.Int("open_loans", len(openIDs)),
		)
	}
	return report, nil
}

// OpenLoans lists the actor's outstanding loans.
func (uc *Usecase) OpenLoans(ctx context.Context, actor *library.Actor) ([]library.Loan, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("list loans")
	}
	return uc.loans.ListOpenByUser(ctx, actor.ID)
}
