package lending_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lending-service/internal/adapter/repository/rest"
	library "lending-service/internal/domain/library"
	"lending-service/internal/store"
	"lending-service/internal/usecase/lending"
	apperrors "lending-service/pkg/errors"
)

// The cycle tests run the engine against the in-memory store through the
// real repositories, so the stored record shapes and the filter queries
// are exercised, not mocked.

// The store-backed repositories must satisfy the engine's interfaces,
// MarkReturned included.
var (
	_ lending.BookRepository = (*rest.BookRepo)(nil)
	_ lending.LoanRepository = (*rest.LoanRepo)(nil)
)

type fixture struct {
	client *store.MemoryClient
	books  *rest.BookRepo
	loans  *rest.LoanRepo
	uc     *lending.Usecase
	ana    *library.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := store.NewMemoryClient()
	log := zaptest.NewLogger(t)
	books := rest.NewBookRepo(client, log)
	loans := rest.NewLoanRepo(client, log)

	ctx := context.Background()
	created, err := books.Create(ctx, &library.Book{
		Title: "Dune", Author: "Frank Herbert", Category: "Science Fiction", Available: true,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)

	return &fixture{
		client: client,
		books:  books,
		loans:  loans,
		uc:     lending.New(books, loans, log),
		ana:    &library.Actor{ID: 7, Name: "Ana Martins", Role: library.RoleUser},
	}
}

func TestBorrowReturnCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	borrowed, err := f.uc.Borrow(ctx, f.ana, lending.BorrowRequest{BookID: 1})
	require.NoError(t, err)
	assert.False(t, borrowed.Book.Available)
	assert.Equal(t, library.StatusBorrowed, borrowed.Loan.Status)
	assert.NotEmpty(t, borrowed.Loan.Date)

	// A second borrow must bounce off the flag without writing a loan.
	_, err = f.uc.Borrow(ctx, f.ana, lending.BorrowRequest{BookID: 1})
	var bue *apperrors.BookUnavailableError
	require.ErrorAs(t, err, &bue)
	all, err := f.loans.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	returned, err := f.uc.Return(ctx, f.ana, lending.ReturnRequest{BookID: 1})
	require.NoError(t, err)
	assert.True(t, returned.Book.Available)
	assert.Equal(t, library.StatusReturned, returned.Loan.Status)
	assert.NotEmpty(t, returned.Loan.ReturnDate)

	// And a fresh borrow works again.
	_, err = f.uc.Borrow(ctx, f.ana, lending.BorrowRequest{BookID: 1})
	require.NoError(t, err)
}

func TestBorrow_LoanWriteFailure_NothingLands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.FailNext = errors.New("store down")

	_, err := f.uc.Borrow(ctx, f.ana, lending.BorrowRequest{BookID: 1})
	var bfe *apperrors.BorrowFailedError
	require.ErrorAs(t, err, &bfe)
	assert.Equal(t, apperrors.StepLoanWrite, bfe.Step)

	// Nothing landed: no loan, book untouched.
	all, err := f.loans.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	book, err := f.books.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, book.Available)

	report, err := f.uc.Reconcile(ctx, lending.ReconcileRequest{BookID: 1})
	require.NoError(t, err)
	assert.False(t, report.Stale)
}

func TestReturn_FlagWriteFailure_ReconcileFindsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Borrow(ctx, f.ana, lending.BorrowRequest{BookID: 1})
	require.NoError(t, err)

	// Put the store into the state a return leaves behind when its flag
	// write fails: loan closed by hand, book flag never freed.
	open, err := f.loans.FindOpen(ctx, f.ana.ID, 1)
	require.NoError(t, err)
	require.Len(t, open, 1)
	_, err = f.loans.MarkReturned(ctx, open[0].ID, "2025-03-15")
	require.NoError(t, err)

	report, err := f.uc.Reconcile(ctx, lending.ReconcileRequest{BookID: 1})
	require.NoError(t, err)
	assert.True(t, report.Stale)
	assert.False(t, report.Available)
	assert.True(t, report.ExpectedAvailable)
	assert.Empty(t, report.OpenLoanIDs)

	// Reconcile is read-only: the drift is still there afterwards.
	book, err := f.books.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, book.Available)
}

func TestReturn_AfterStoreFailure_LoanCloseFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Borrow(ctx, f.ana, lending.BorrowRequest{BookID: 1})
	require.NoError(t, err)

	f.client.FailNext = errors.New("store down")

	_, err = f.uc.Return(ctx, f.ana, lending.ReturnRequest{BookID: 1})
	var rfe *apperrors.ReturnFailedError
	require.ErrorAs(t, err, &rfe)
	assert.Equal(t, apperrors.StepLoanWrite, rfe.Step)

	// Loan still open, book still unavailable: consistent, retryable.
	open, err := f.loans.FindOpen(ctx, f.ana.ID, 1)
	require.NoError(t, err)
	assert.Len(t, open, 1)
	book, err := f.books.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, book.Available)

	// A plain retry succeeds.
	_, err = f.uc.Return(ctx, f.ana, lending.ReturnRequest{BookID: 1})
	require.NoError(t, err)
}

func TestReconcile_DoubleBorrowThroughStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Two clients read available:true before either writes; both loans
	// land. Reproduced here by creating the second loan directly.
	_, err := f.uc.Borrow(ctx, f.ana, lending.BorrowRequest{BookID: 1})
	require.NoError(t, err)
	_, err = f.loans.Create(ctx, &library.Loan{
		UserID: 8, BookID: 1, Date: "2025-03-15", Status: library.StatusBorrowed,
	})
	require.NoError(t, err)

	report, err := f.uc.Reconcile(ctx, lending.ReconcileRequest{BookID: 1})
	require.NoError(t, err)
	assert.True(t, report.DoubleBorrow)
	assert.Len(t, report.OpenLoanIDs, 2)
	assert.False(t, report.Stale)
}
