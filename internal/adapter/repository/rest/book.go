// Package rest adapts the generic collection store client into the typed
// per-collection repositories the usecases consume. Records are decoded
// strictly: a record whose shape differs from the fixed entity shape is
// rejected here rather than propagated into the engines.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	library "lending-service/internal/domain/library"
	"lending-service/internal/store"
	apperrors "lending-service/pkg/errors"
)

var strict = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// BookRepo accesses the books collection.
type BookRepo struct {
	client store.Client
	log    *zap.Logger
}

// NewBookRepo creates a book repository over the given store client.
func NewBookRepo(client store.Client, log *zap.Logger) *BookRepo {
	return &BookRepo{client: client, log: log}
}

// List returns all books, optionally restricted to one category.
func (r *BookRepo) List(ctx context.Context, category string) ([]library.Book, error) {
	var filters store.Filters
	if category != "" {
		filters = store.Filters{"category": category}
	}

	records, err := r.client.List(ctx, store.Books, filters)
	if err != nil {
		return nil, apperrors.NewStoreError("list books", err)
	}
	return decodeBooks(records)
}

// GetByID returns a single book.
func (r *BookRepo) GetByID(ctx context.Context, id int64) (*library.Book, error) {
	record, err := r.client.GetByID(ctx, store.Books, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NewNotFound("book", id)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get book", err)
	}
	return decodeBook(record)
}

// Create stores a new book and returns it with its assigned id.
func (r *BookRepo) Create(ctx context.Context, b *library.Book) (*library.Book, error) {
	record, err := r.client.Create(ctx, store.Books, withoutID(b))
	if err != nil {
		return nil, apperrors.NewStoreError("create book", err)
	}
	return decodeBook(record)
}

// Update merges the patch into the stored book. Nil patch fields are
// omitted from the write and keep their stored values.
func (r *BookRepo) Update(ctx context.Context, id int64, patch library.BookPatch) (*library.Book, error) {
	record, err := r.client.Update(ctx, store.Books, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NewNotFound("book", id)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("update book", err)
	}
	return decodeBook(record)
}

// SetAvailable flips only the availability flag. This is the second,
// dependent write of the lending sequences.
func (r *BookRepo) SetAvailable(ctx context.Context, id int64, available bool) (*library.Book, error) {
	return r.Update(ctx, id, library.BookPatch{Available: &available})
}

// Delete removes a book.
func (r *BookRepo) Delete(ctx context.Context, id int64) error {
	err := r.client.Delete(ctx, store.Books, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NewNotFound("book", id)
	}
	if err != nil {
		return apperrors.NewStoreError("delete book", err)
	}
	return nil
}

func decodeBook(record json.RawMessage) (*library.Book, error) {
	var b library.Book
	if err := strict.Unmarshal(record, &b); err != nil {
		return nil, fmt.Errorf("malformed book record: %w", err)
	}
	return &b, nil
}

func decodeBooks(records []json.RawMessage) ([]library.Book, error) {
	books := make([]library.Book, 0, len(records))
	for _, record := range records {
		b, err := decodeBook(record)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, nil
}

// withoutID strips the id field so the store assigns one.
func withoutID(b *library.Book) map[string]any {
	fields := map[string]any{
		"title":     b.Title,
		"author":    b.Author,
		"available": b.Available,
	}
	if b.Category != "" {
		fields["category"] = b.Category
	}
	if b.ImageURL != "" {
		fields["imageUrl"] = b.ImageURL
	}
	return fields
}
