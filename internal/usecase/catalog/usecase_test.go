package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	library "lending-service/internal/domain/library"
	apperrors "lending-service/pkg/errors"
)

// MockBookRepository is a mock implementation of BookRepository.
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) List(ctx context.Context, category string) ([]library.Book, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]library.Book), args.Error(1)
}

func (m *MockBookRepository) GetByID(ctx context.Context, id int64) (*library.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.Book), args.Error(1)
}

func (m *MockBookRepository) Create(ctx context.Context, b *library.Book) (*library.Book, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.Book), args.Error(1)
}

func (m *MockBookRepository) Update(ctx context.Context, id int64, patch library.BookPatch) (*library.Book, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.Book), args.Error(1)
}

func (m *MockBookRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func setupTestUsecase(t *testing.T) (*Usecase, *MockBookRepository) {
	books := new(MockBookRepository)
	return New(books, zaptest.NewLogger(t)), books
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields
}

// ==================== CREATE BOOK TESTS ====================

func TestCreateBook_Success(t *testing.T) {
	uc, books := setupTestUsecase(t)
	ctx := context.Background()

	books.On("Create", ctx, mock.MatchedBy(func(b *library.Book) bool {
		return b.Title == "Dune" && b.Author == "Frank Herbert" && b.Available
	})).Return(&library.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Category: "Science Fiction", Available: true}, nil)

	book, err := uc.CreateBook(ctx, CreateBookRequest{
		Title:    "  Dune  ",
		Author:   " Frank Herbert ",
		Category: "Science Fiction",
		ImageURL: "/covers/dune.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), book.ID)
	assert.True(t, book.Available)
	books.AssertExpectations(t)
}

func TestCreateBook_FieldErrors(t *testing.T) {
	uc, books := setupTestUsecase(t)

	_, err := uc.CreateBook(context.Background(), CreateBookRequest{
		Title:    " ",
		Author:   "X",
		Category: "",
		ImageURL: "http://cdn.example.com/dune.jpg",
	})

	fields := fieldsOf(t, err)
	assert.Equal(t, "is required", fields["title"])
	assert.Equal(t, "must be at least 2 characters", fields["author"])
	assert.Equal(t, "is required", fields["category"])
	assert.Contains(t, fields["imageUrl"], "/covers/")

	// Validation failures issue no writes.
	books.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBook_ValidationIsDeterministic(t *testing.T) {
	uc, _ := setupTestUsecase(t)
	req := CreateBookRequest{Title: "", Author: "", Category: ""}

	_, err1 := uc.CreateBook(context.Background(), req)
	_, err2 := uc.CreateBook(context.Background(), req)

	assert.Equal(t, fieldsOf(t, err1), fieldsOf(t, err2))
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestCreateBook_CoverPathCases(t *testing.T) {
	uc, books := setupTestUsecase(t)
	ctx := context.Background()

	books.On("Create", mock.Anything, mock.Anything).
		Return(&library.Book{ID: 1}, nil)

	valid := []string{
		"/covers/dune.jpg",
		"/covers/left-hand.png",
		"/covers/a.jpeg",
		"/covers/x_1.webp",
		"", // optional
	}
	for _, p := range valid {
		_, err := uc.CreateBook(ctx, CreateBookRequest{
			Title: "Dune", Author: "Frank Herbert", Category: "SF", ImageURL: p,
		})
		assert.NoError(t, err, "path %q", p)
	}

	invalid := []string{
		"covers/dune.jpg",        // not rooted
		"/covers/dune.gif",       // wrong extension
		"/covers/sub/dune.jpg",   // nested path
		"/images/dune.jpg",       // wrong prefix
		"/covers/.jpg2",          // trailing junk
		"https://x/covers/a.jpg", // absolute URL
	}
	for _, p := range invalid {
		_, err := uc.CreateBook(ctx, CreateBookRequest{
			Title: "Dune", Author: "Frank Herbert", Category: "SF", ImageURL: p,
		})
		fields := fieldsOf(t, err)
		assert.Contains(t, fields, "imageUrl", "path %q", p)
	}
}

// ==================== UPDATE BOOK TESTS ====================

func TestUpdateBook_PreservesAvailable(t *testing.T) {
	uc, books := setupTestUsecase(t)
	ctx := context.Background()

	books.On("Update", ctx, int64(5), mock.MatchedBy(func(p library.BookPatch) bool {
		return p.Available == nil && p.Title != nil && *p.Title == "Dune Messiah"
	})).Return(&library.Book{ID: 5, Title: "Dune Messiah", Available: false}, nil)

	book, err := uc.UpdateBook(ctx, UpdateBookRequest{
		ID: 5, Title: "Dune Messiah", Author: "Frank Herbert", Category: "Science Fiction",
	})

	require.NoError(t, err)
	assert.False(t, book.Available)
	books.AssertExpectations(t)
}

func TestUpdateBook_ExplicitAvailable(t *testing.T) {
	uc, books := setupTestUsecase(t)
	ctx := context.Background()
	available := true

	books.On("Update", ctx, int64(5), mock.MatchedBy(func(p library.BookPatch) bool {
		return p.Available != nil && *p.Available
	})).Return(&library.Book{ID: 5, Available: true}, nil)

	_, err := uc.UpdateBook(ctx, UpdateBookRequest{
		ID: 5, Title: "Dune", Author: "Frank Herbert", Category: "SF", Available: &available,
	})

	require.NoError(t, err)
	books.AssertExpectations(t)
}

func TestUpdateBook_FieldErrors(t *testing.T) {
	uc, books := setupTestUsecase(t)

	_, err := uc.UpdateBook(context.Background(), UpdateBookRequest{
		ID: 5, Title: "D", Author: "", Category: "SF",
	})

	fields := fieldsOf(t, err)
	assert.Equal(t, "must be at least 2 characters", fields["title"])
	assert.Equal(t, "is required", fields["author"])
	books.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateBook_EmptyImageKeepsStored(t *testing.T) {
	uc, books := setupTestUsecase(t)
	ctx := context.Background()

	books.On("Update", ctx, int64(5), mock.MatchedBy(func(p library.BookPatch) bool {
		return p.ImageURL == nil
	})).Return(&library.Book{ID: 5, ImageURL: "/covers/dune.jpg"}, nil)

	book, err := uc.UpdateBook(ctx, UpdateBookRequest{
		ID: 5, Title: "Dune", Author: "Frank Herbert", Category: "SF",
	})

	require.NoError(t, err)
	assert.Equal(t, "/covers/dune.jpg", book.ImageURL)
}

// ==================== DELETE BOOK TESTS ====================

func TestDeleteBook_RequiresConfirmation(t *testing.T) {
	uc, books := setupTestUsecase(t)

	err := uc.DeleteBook(context.Background(), DeleteBookRequest{ID: 5, Confirmed: false})

	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "confirm")
	books.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteBook_Confirmed(t *testing.T) {
	uc, books := setupTestUsecase(t)
	ctx := context.Background()

	books.On("Delete", ctx, int64(5)).Return(nil)

	err := uc.DeleteBook(ctx, DeleteBookRequest{ID: 5, Confirmed: true})

	require.NoError(t, err)
	books.AssertExpectations(t)
}

// ==================== BROWSE TESTS ====================

func TestCategories_DistinctSorted(t *testing.T) {
	uc, books := setupTestUsecase(t)
	ctx := context.Background()

	books.On("List", ctx, "").Return([]library.Book{
		{ID: 1, Category: "Software"},
		{ID: 2, Category: "Philosophy"},
		{ID: 3, Category: "Software"},
		{ID: 4, Category: ""},
	}, nil)

	categories, err := uc.Categories(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"Philosophy", "Software"}, categories)
}

func TestListBooks_TrimsCategory(t *testing.T) {
	uc, books := setupTestUsecase(t)
	ctx := context.Background()

	books.On("List", ctx, "Software").Return([]library.Book{{ID: 1}}, nil)

	result, err := uc.ListBooks(ctx, ListBooksRequest{Category: "  Software  "})

	require.NoError(t, err)
	assert.Len(t, result, 1)
	books.AssertExpectations(t)
}
