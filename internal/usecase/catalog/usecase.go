// Package catalog implements book administration: create, update and
// delete with field validation in front of every write, plus the public
// browse reads.
package catalog

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	library "lending-service/internal/domain/library"
	apperrors "lending-service/pkg/errors"
)

// coverPath is the only accepted shape for a book cover reference.
var coverPath = regexp.MustCompile(`^/covers/[^/]+\.(png|jpg|jpeg|webp)$`)

// BookRepository is the book access the catalog service needs. List may
// be served by a cache; the mutations always reach the store.
type BookRepository interface {
	List(ctx context.Context, category string) ([]library.Book, error)
	GetByID(ctx context.Context, id int64) (*library.Book, error)
	Create(ctx context.Context, b *library.Book) (*library.Book, error)
	Update(ctx context.Context, id int64, patch library.BookPatch) (*library.Book, error)
	Delete(ctx context.Context, id int64) error
}

// Usecase implements catalog administration and browsing.
type Usecase struct {
	books    BookRepository
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a catalog service over the given repository.
func New(books BookRepository, log *zap.Logger) *Usecase {
	v := validator.New()
	// Error from RegisterValidation only fires for a blank tag name.
	_ = v.RegisterValidation("coverpath", func(fl validator.FieldLevel) bool {
		return coverPath.MatchString(fl.Field().String())
	})
	return &Usecase{books: books, log: log, validate: v}
}

// CreateBook validates the fields and stores a new book. New books start
// available.
func (uc *Usecase) CreateBook(ctx context.Context, in CreateBookRequest) (*library.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Category = strings.TrimSpace(in.Category)

	if err := uc.fieldErrors(in); err != nil {
		uc.log.Warn("create book rejected", zap.Error(err))
		return nil, err
	}

	book, err := uc.books.Create(ctx, &library.Book{
		Title:     in.Title,
		Author:    in.Author,
		Category:  in.Category,
		ImageURL:  in.ImageURL,
		Available: true,
	})
	if err != nil {
		uc.log.Error("failed to create book", zap.String("title", in.Title), zap.Error(err))
		return nil, err
	}

	uc.log.Info("book created", zap.Int64("book_id", book.ID), zap.String("title", book.Title))
	return book, nil
}

// UpdateBook validates the fields and patches the stored book. The
// available flag is preserved unless the request explicitly sets one.
func (uc *Usecase) UpdateBook(ctx context.Context, in UpdateBookRequest) (*library.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Category = strings.TrimSpace(in.Category)

	if err := uc.fieldErrors(in); err != nil {
		uc.log.Warn("update book rejected", zap.Int64("book_id", in.ID), zap.Error(err))
		return nil, err
	}

	patch := library.BookPatch{
		Title:     &in.Title,
		Author:    &in.Author,
		Category:  &in.Category,
		Available: in.Available,
	}
	if in.ImageURL != "" {
		patch.ImageURL = &in.ImageURL
	}

	book, err := uc.books.Update(ctx, in.ID, patch)
	if err != nil {
		uc.log.Error("failed to update book", zap.Int64("book_id", in.ID), zap.Error(err))
		return nil, err
	}

	uc.log.Info("book updated", zap.Int64("book_id", book.ID))
	return book, nil
}

// DeleteBook removes a book. The confirmation flag is part of the
// contract: an unconfirmed request never reaches the store.
func (uc *Usecase) DeleteBook(ctx context.Context, in DeleteBookRequest) error {
	if !in.Confirmed {
		return apperrors.NewValidationError(map[string]string{
			"confirm": "deletion must be explicitly confirmed",
		})
	}

	if err := uc.books.Delete(ctx, in.ID); err != nil {
		uc.log.Error("failed to delete book", zap.Int64("book_id", in.ID), zap.Error(err))
		return err
	}

	uc.log.Info("book deleted", zap.Int64("book_id", in.ID))
	return nil
}

// ListBooks returns the catalog, optionally restricted to one category.
func (uc *Usecase) ListBooks(ctx context.Context, in ListBooksRequest) ([]library.Book, error) {
	return uc.books.List(ctx, strings.TrimSpace(in.Category))
}

// GetBook returns one book.
func (uc *Usecase) GetBook(ctx context.Context, id int64) (*library.Book, error) {
	return uc.books.GetByID(ctx, id)
}

// Categories returns the distinct non-empty categories, sorted.
func (uc *Usecase) Categories(ctx context.Context) ([]string, error) {
	books, err := uc.books.List(ctx, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var categories []string
	for _, b := range books {
		if b.Category == "" {
			continue
		}
		if _, ok := seen[b.Category]; ok {
			continue
		}
		seen[b.Category] = struct{}{}
		categories = append(categories, b.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// fieldErrors runs struct validation and converts the result into the
// per-field message map the API reports. The same invalid input always
// produces the same map.
func (uc *Usecase) fieldErrors(in any) error {
	err := uc.validate.Struct(in)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[fieldName(e.Field())] = fieldMessage(e)
	}
	return apperrors.NewValidationError(fields)
}

func fieldName(structField string) string {
	switch structField {
	case "ImageURL":
		return "imageUrl"
	default:
		return strings.ToLower(structField)
	}
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "coverpath":
		return "must be a /covers/ path ending in png, jpg, jpeg or webp"
	default:
		return "is invalid"
	}
}
