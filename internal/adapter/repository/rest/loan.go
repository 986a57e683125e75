package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	library "lending-service/internal/domain/library"
	"lending-service/internal/store"
	apperrors "lending-service/pkg/errors"
)

// LoanRepo accesses the loans collection. Loans are append-mostly: they
// are created as borrowed and patched exactly once to returned, never
// deleted.
type LoanRepo struct {
	client store.Client
	log    *zap.Logger
}

// NewLoanRepo creates a loan repository over the given store client.
func NewLoanRepo(client store.Client, log *zap.Logger) *LoanRepo {
	return &LoanRepo{client: client, log: log}
}

// Create stores a new loan and returns it with its assigned id.
func (r *LoanRepo) Create(ctx context.Context, l *library.Loan) (*library.Loan, error) {
	fields := map[string]any{
		"userId": l.UserID,
		"bookId": l.BookID,
		"date":   l.Date,
		"status": l.Status,
	}
	record, err := r.client.Create(ctx, store.Loans, fields)
	if err != nil {
		return nil, apperrors.NewStoreError("create loan", err)
	}
	return decodeLoan(record)
}

// FindOpen returns the actor's open loans for one book, ordered by loan
// id ascending. The store guarantees no uniqueness, so callers that need
// a single loan take the first as the defined tie-break.
func (r *LoanRepo) FindOpen(ctx context.Context, userID, bookID int64) ([]library.Loan, error) {
	records, err := r.client.List(ctx, store.Loans, store.Filters{
		"userId": strconv.FormatInt(userID, 10),
		"bookId": strconv.FormatInt(bookID, 10),
		"status": string(library.StatusBorrowed),
	})
	if err != nil {
		return nil, apperrors.NewStoreError("query open loans", err)
	}
	return decodeLoansSorted(records)
}

// ListByBook returns all loans ever taken on one book, open or closed.
func (r *LoanRepo) ListByBook(ctx context.Context, bookID int64) ([]library.Loan, error) {
	records, err := r.client.List(ctx, store.Loans, store.Filters{
		"bookId": strconv.FormatInt(bookID, 10),
	})
	if err != nil {
		return nil, apperrors.NewStoreError("query loans by book", err)
	}
	return decodeLoansSorted(records)
}

// ListOpenByUser returns the actor's open loans across all books.
func (r *LoanRepo) ListOpenByUser(ctx context.Context, userID int64) ([]library.Loan, error) {
	records, err := r.client.List(ctx, store.Loans, store.Filters{
		"userId": strconv.FormatInt(userID, 10),
		"status": string(library.StatusBorrowed),
	})
	if err != nil {
		return nil, apperrors.NewStoreError("query open loans by user", err)
	}
	return decodeLoansSorted(records)
}

// ListAll returns every loan, in store order.
func (r *LoanRepo) ListAll(ctx context.Context) ([]library.Loan, error) {
	records, err := r.client.List(ctx, store.Loans, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("list loans", err)
	}
	return decodeLoans(records)
}

// MarkReturned closes a loan: status returned plus the return date. This
// is the first write of the return sequence.
func (r *LoanRepo) MarkReturned(ctx context.Context, id int64, returnDate string) (*library.Loan, error) {
	record, err := r.client.Update(ctx, store.Loans, id, map[string]any{
		"status":     library.StatusReturned,
		"returnDate": returnDate,
	})
	if err != nil {
		return nil, apperrors.NewStoreError("update loan", err)
	}
	return decodeLoan(record)
}

func decodeLoan(record json.RawMessage) (*library.Loan, error) {
	var l library.Loan
	if err := strict.Unmarshal(record, &l); err != nil {
		return nil, fmt.Errorf("malformed loan record: %w", err)
	}
	return &l, nil
}

func decodeLoans(records []json.RawMessage) ([]library.Loan, error) {
	loans := make([]library.Loan, 0, len(records))
	for _, record := range records {
		l, err := decodeLoan(record)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	return loans, nil
}

func decodeLoansSorted(records []json.RawMessage) ([]library.Loan, error) {
	loans, err := decodeLoans(records)
	if err != nil {
		return nil, err
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}
