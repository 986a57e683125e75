package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidCredentials indicates a login with an unknown email or a
// wrong password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// The lending core classifies every failure into one of a small set of
// kinds. Precondition failures (Unauthenticated, BookUnavailable,
// NoActiveLoan, Validation) are raised before any write and are safe to
// retry after correcting the condition. Store failures during a two-write
// sequence are wrapped in BorrowFailed/ReturnFailed and never rolled back.

// UnauthenticatedError indicates an operation that requires a signed-in
// actor was called without one.
type UnauthenticatedError struct {
	Operation string
}

func (e *UnauthenticatedError) Error() string {
	return fmt.Sprintf("%s requires a signed-in user", e.Operation)
}

// NewUnauthenticated creates an UnauthenticatedError for the named operation.
func NewUnauthenticated(operation string) *UnauthenticatedError {
	return &UnauthenticatedError{Operation: operation}
}

// BookUnavailableError indicates a borrow attempt on a book whose
// available flag is false. No writes were issued.
type BookUnavailableError struct {
	BookID int64
}

func (e *BookUnavailableError) Error() string {
	return fmt.Sprintf("book %d is not available", e.BookID)
}

// NoActiveLoanError indicates a return attempt with no matching open loan.
// No writes were issued.
type NoActiveLoanError struct {
	UserID int64
	BookID int64
}

func (e *NoActiveLoanError) Error() string {
	return fmt.Sprintf("user %d has no active loan for book %d", e.UserID, e.BookID)
}

// ValidationError carries a per-field message map. The same invalid input
// always reproduces the same field set.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError from a field message map.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError indicates a record lookup by id matched nothing.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NewNotFound creates a NotFoundError for the named resource.
func NewNotFound(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// StoreError indicates a remote collection store call failed to complete.
type StoreError struct {
	Op  string // e.g. "list books", "update loan"
	Err error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store unavailable: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store unavailable: %s", e.Op)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps a failed store call.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// Steps of the two-write lending sequences. The first write creates or
// closes the loan; the second toggles the book's available flag.
const (
	StepLoanWrite = "loan"
	StepBookFlag  = "book"
)

// BorrowFailedError indicates one of borrow's two writes failed. When
// Step is StepBookFlag the loan record was already created and the book
// still shows available; only the book-flag write may be retried.
type BorrowFailedError struct {
	BookID int64
	Step   string
	Err    error
}

func (e *BorrowFailedError) Error() string {
	return fmt.Sprintf("borrow of book %d failed at %s write: %v", e.BookID, e.Step, e.Err)
}

func (e *BorrowFailedError) Unwrap() error {
	return e.Err
}

// ReturnFailedError indicates one of return's two writes failed. When
// Step is StepBookFlag the loan was already closed and the book still
// shows unavailable; only the book-flag write may be retried.
type ReturnFailedError struct {
	BookID int64
	LoanID int64
	Step   string
	Err    error
}

func (e *ReturnFailedError) Error() string {
	return fmt.Sprintf("return of book %d (loan %d) failed at %s write: %v", e.BookID, e.LoanID, e.Step, e.Err)
}

func (e *ReturnFailedError) Unwrap() error {
	return e.Err
}
